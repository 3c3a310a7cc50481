package types

import (
	"regexp"
	"strings"

	"github.com/nakamauwu/backchannel/id"
	"github.com/nakamauwu/backchannel/validator"
)

// User is the summary of someone known by the identity provider.
type User struct {
	ID       string  `json:"id" db:"id"`
	Name     *string `json:"name" db:"name"`
	Username string  `json:"username" db:"username"`
	Image    *string `json:"image" db:"image"`
}

type RetrieveUser struct {
	UserID string
}

func (in *RetrieveUser) Validate() error {
	v := validator.New()

	if !id.Valid(in.UserID) {
		v.AddError("UserID", "User ID is invalid")
	}

	return v.AsError()
}

// UpsertUser syncs a user from the identity provider.
// ExternalID is the provider's own identifier.
type UpsertUser struct {
	ExternalID string  `json:"externalID"`
	Name       *string `json:"name"`
	Username   string  `json:"username"`
	Image      *string `json:"image"`
}

func (in *UpsertUser) Validate() error {
	v := validator.New()

	in.ExternalID = strings.TrimSpace(in.ExternalID)
	in.Username = strings.TrimSpace(in.Username)

	if in.ExternalID == "" {
		v.AddError("ExternalID", "External ID is required")
	}

	if !ValidUsername(in.Username) {
		v.AddError("Username", "Username is invalid")
	}

	if in.Name != nil {
		*in.Name = strings.TrimSpace(*in.Name)
		if *in.Name == "" {
			in.Name = nil
		}
	}

	return v.AsError()
}

type ToggleFollow struct {
	FolloweeID string

	loggedInUserID string
}

func (in *ToggleFollow) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in ToggleFollow) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *ToggleFollow) Validate() error {
	v := validator.New()

	if !id.Valid(in.FolloweeID) {
		v.AddError("FolloweeID", "Followee ID is invalid")
	}

	return v.AsError()
}

type ToggledFollow struct {
	Following      bool `json:"following"`
	FollowersCount int  `json:"followersCount"`

	Notification *Notification `json:"-"`
}

var reUsername = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{0,17}$`)

func ValidUsername(s string) bool {
	return reUsername.MatchString(s)
}
