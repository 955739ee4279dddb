package domain

type Location struct {
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
	State    string `json:"state,omitempty"`
	Landmark string `json:"landmark,omitempty"`
	Country  string `json:"country,omitempty"`
}

type User struct {
	ID       string    `json:"_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Image    string    `json:"image,omitempty"`
	Role     string    `json:"role"`
	Location *Location `json:"location,omitempty"`
}

// AuthResult is returned by login and register.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Credentials struct {
	EmailOrPhone string `json:"emailOrPhone"`
	Password     string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// ProfileUpdate is the body of PUT /users/profile-update.
type ProfileUpdate struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Location Location `json:"location"`
}
