package models

// PublicUser is the only user shape ever written to clients.
type PublicUser struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      *string    `json:"name"`
	Role      Role       `json:"role"`
	Organizer *Organizer `json:"organizer,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Organizer: u.Organizer,
	}
}
