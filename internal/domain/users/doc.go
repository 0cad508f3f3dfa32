// Package users manages accounts: password verification, admin CRUD and
// first-start seeding.
//
// Accounts are stored in the "users" collection keyed by username.
// Deleting an account also removes the user's personal storage root.
package users
