package entity

import "time"

// Preference keys stored on the account profile.
const (
	PrefUsername       = "username"
	PrefPhone          = "phone"
	PrefFullName       = "fullName"
	PrefProfileImageId = "profileImageId"
)

type Profile struct {
	Id    string                 `json:"id"`
	Name  string                 `json:"name"`
	Email string                 `json:"email"`
	Prefs map[string]interface{} `json:"prefs"`
}

func (p *Profile) Pref(key string) string {
	if p == nil || p.Prefs == nil {
		return ""
	}
	if v, ok := p.Prefs[key].(string); ok {
		return v
	}
	return ""
}

// Clone returns a deep copy with a non-nil Prefs map. Clone of nil is nil.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Prefs = make(map[string]interface{}, len(p.Prefs))
	for k, v := range p.Prefs {
		c.Prefs[k] = v
	}
	return &c
}

func (p *Profile) Username() string       { return p.Pref(PrefUsername) }
func (p *Profile) Phone() string          { return p.Pref(PrefPhone) }
func (p *Profile) ProfileImageId() string { return p.Pref(PrefProfileImageId) }

// AuthSession holds the tokens issued by the backend for a signed-in user.
type AuthSession struct {
	UserId       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
