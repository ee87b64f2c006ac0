package models

// Actor is the verified caller of an operation.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

func (a Actor) Profile() UserProfile {
	return UserProfile{ID: a.ID, Name: a.Name, Email: a.Email, Phone: a.Phone}
}

// UserProfile is the last known snapshot of a user, kept for populating
// donor, requester and fulfiller names on read.
type UserProfile struct {
	ID    string `json:"id" bson:"_id"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email,omitempty" bson:"email"`
	Phone string `json:"phone,omitempty" bson:"phone"`
}

// UserRef is the populated form of a user reference.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
