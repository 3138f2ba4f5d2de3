package types

import (
	"fmt"
	"strings"
)

// MessageType selects the outreach template the composer writes.
type MessageType string

// The six supported message types. The strings are part of the external
// contract and are matched exactly, spelling included.
const (
	ColdEmailReferral      MessageType = "Cold Email for referral"
	ColdEmailConnect       MessageType = "Cold email to connect"
	ColdEmailJobInquiry    MessageType = "Cold Email for Job inquiry"
	LinkedInReferral       MessageType = "LinkedIn Message for refferal"
	LinkedInCareerGuidance MessageType = "LinkedIn Message for career Guidance"
	LinkedInJobInquiry     MessageType = "LinkedIn Message for Job inquiry"
)

// MessageTypes lists every supported message type in display order.
var MessageTypes = []MessageType{
	ColdEmailReferral,
	ColdEmailConnect,
	ColdEmailJobInquiry,
	LinkedInReferral,
	LinkedInCareerGuidance,
	LinkedInJobInquiry,
}

// Valid reports whether t is one of the supported message types.
func (t MessageType) Valid() bool {
	for _, mt := range MessageTypes {
		if t == mt {
			return true
		}
	}
	return false
}

// IsEmail reports whether the message type is an email (and so gets a subject line).
func (t MessageType) IsEmail() bool {
	return strings.HasPrefix(strings.ToLower(string(t)), "cold email")
}

// ParseMessageType returns the message type with exactly the given name.
func ParseMessageType(s string) (MessageType, error) {
	mt := MessageType(s)
	if !mt.Valid() {
		return "", fmt.Errorf("unknown message type %q", s)
	}
	return mt, nil
}

// UserInput is everything the composer needs for one message.
type UserInput struct {
	Summary     string      `json:"summary" validate:"required,notblank"`
	Resume      string      `json:"resume,omitempty"`
	LinkedIn    string      `json:"linkedin,omitempty"`
	GitHub      string      `json:"github,omitempty"`
	Portfolio   string      `json:"portfolio,omitempty"`
	Blog        string      `json:"blog,omitempty"`
	MessageType MessageType `json:"message_type" validate:"required,message_type"`
	JobType     string      `json:"job_type" validate:"required,notblank"`
}

// NewUserInput builds a UserInput from a summary text and a link map.
func NewUserInput(summary string, links LinkMap, messageType MessageType, jobType string) UserInput {
	return UserInput{
		Summary:     summary,
		Resume:      links.Resume,
		LinkedIn:    links.LinkedIn,
		GitHub:      links.GitHub,
		Portfolio:   links.Portfolio,
		Blog:        links.Blog,
		MessageType: messageType,
		JobType:     jobType,
	}
}

// Links returns the link fields as a LinkMap.
func (u UserInput) Links() LinkMap {
	return LinkMap{
		LinkedIn:  u.LinkedIn,
		GitHub:    u.GitHub,
		Portfolio: u.Portfolio,
		Blog:      u.Blog,
		Resume:    u.Resume,
	}
}

// Validate checks required fields and the message type.
func (u *UserInput) Validate() error {
	return validate.Struct(u)
}
