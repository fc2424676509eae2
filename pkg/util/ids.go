package util

import gonanoid "github.com/matoous/go-nanoid/v2"

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewID returns a random 16 character identifier used for users and logs
func NewID() (string, error) {
	return gonanoid.Generate(idCharset, 16)
}
