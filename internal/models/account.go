package models

const DefaultAvatarURL = "https://abs.twimg.com/sticky/default_profile_images/default_profile_400x400.png"

type Account struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	Avatar      string `json:"avatar"`
	IsAdmin     bool   `json:"isAdmin"`
	IsSuspended bool   `json:"isSuspended"`
	LastOnline  int64  `json:"lastOnline"`
}

// Sanitized returns a copy safe to hand to clients. The password hash is
// replaced with the literal "hashed", matching the wire format clients expect.
func (a Account) Sanitized() Account {
	a.Password = "hashed"
	return a
}
