package model

// AdminUsername is the reserved administrator identity.
const AdminUsername = "admin"

// User identifies the acting party. Identity is established by the session
// client and threaded explicitly into engine constructors; there is no
// ambient current-user global.
type User struct {
	Username string `json:"username"`
}

// IsAdmin reports whether the user is the administrator.
func (u User) IsAdmin() bool {
	return u.Username == AdminUsername
}

// Receipt is an immutable record of a completed funding action. Cost is the
// total funded (unit cost times quantity at time of funding), accumulated
// when the same supporter funds the same need again.
type Receipt struct {
	SupporterUsername string  `json:"supporter_username"`
	Name              string  `json:"name"`
	Cost              float64 `json:"cost"`
	Quantity          int     `json:"quantity"`
}

// NeedMessage is a one-per-(recipient, need) inbox slot between a supporter
// and the administrator. Sending to an occupied slot overwrites it.
type NeedMessage struct {
	SenderUsername string `json:"sender_username"`
	NeedName       string `json:"need_name"`
	Message        string `json:"message"`
}
