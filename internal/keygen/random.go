package keygen

import "github.com/google/uuid"

func newRandomKey() string {
	return uuid.NewString()
}
