package models

// Session is the signed-in identity. A nil *Session means signed out.
type Session struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

const (
	DemoEmail    = "demo@shopsage.ai"
	DemoPassword = "demo123"
)

// DemoSession is the fixed identity returned for the reserved demo credentials.
func DemoSession() Session {
	return Session{ID: "demo", Email: DemoEmail, Name: "Demo User"}
}
