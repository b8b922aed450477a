package domain

// User models a marketplace account resolved through the user directory.
type User struct {
	ID           int64  `json:"id" bson:"_id"`
	Email        string `json:"email" bson:"email"`
	PasswordHash string `json:"-" bson:"password"`
	Description  string `json:"description,omitempty" bson:"description,omitempty"`
	Admin        bool   `json:"admin" bson:"admin"`
}
