package registration

import "time"

// VerificationResult is what an identity provider lookup yields
type VerificationResult struct {
	Verified bool           `json:"verified"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data"`
}

// VerificationData is the persisted outcome of identity checks for a registration
type VerificationData struct {
	ID               uint64
	RegistrationID   string
	NIN              string
	NINVerified      bool
	BVN              string
	BVNVerified      bool
	Message          string
	Payload          map[string]any
	VerificationDate time.Time
	UpdatedAt        time.Time
}

// NewVerificationData builds the record stored after a NIN lookup
func NewVerificationData(registrationID, nin string, result *VerificationResult) *VerificationData {
	now := time.Now()
	v := &VerificationData{
		RegistrationID:   registrationID,
		NIN:              nin,
		VerificationDate: now,
		UpdatedAt:        now,
	}
	if result != nil {
		v.NINVerified = result.Verified
		v.Message = result.Message
		v.Payload = result.Data
	}
	return v
}

// FullyVerified reports whether every identity check that was attempted passed.
// BVN is informational and does not gate progress.
func (v *VerificationData) FullyVerified() bool {
	return v.NINVerified
}

// Replaces reports whether v may overwrite the stored record.
// A verified identity is only ever replaced by another verified lookup.
func (v *VerificationData) Replaces(stored *VerificationData) bool {
	return stored == nil || !stored.NINVerified || v.NINVerified
}
