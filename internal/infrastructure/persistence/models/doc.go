// Package models contains GORM persistence models that map to database tables.
// The domain layer stays free of ORM tags; repositories convert between the
// two with the ToDomain / ...FromDomain helpers defined next to each model.
//
// Tables:
//   - registrations, personal_info, employment_info, document_uploads,
//     verification_data, registration_history, registration_comments
//   - employees
//
// Schema changes go through SQL files under migrations/; AllModels exists so
// tests can AutoMigrate an in-memory SQLite database with the same shape.
package models
