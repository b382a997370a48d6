package cqrs

// GetProfileQuery fetches the caller's user record and account.
type GetProfileQuery struct {
	UserID int64
}
