package impl

import "errors"

var ErrEmptyPassword = errors.New("empty password")

const (
	msgInvalidInput       = "invalid input"
	msgLoginFailed        = "login failed"
	msgBadCredentials     = "Invalid CPF or password."
	msgMissingCredentials = "CPF and password are required."
	msgUserDisabled       = "User account is disabled."
	msgCPFTaken           = "A user with this CPF already exists."
	msgEmailTaken         = "A user with this email already exists."
	msgInvalidToken       = "invalid or expired token"
	msgTopicInvalid       = "error creating topic"
	msgTopicNotFound      = "topic not found"
	msgSessionNotActive   = "session not active"
	msgAlreadyVoted       = "already voted"
)
