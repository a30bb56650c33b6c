package util

import (
	"crypto/rand"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
)

// IDBytes is the entropy of a paste id; ids are twice as many hex characters.
const IDBytes = 4

var ErrIDExhausted = errors.New("id collision retries exhausted")

// IDSource is read for id entropy. Tests swap it for a deterministic reader.
var IDSource io.Reader = rand.Reader

func NewID() (string, error) {
	buf := make([]byte, IDBytes)
	if _, err := io.ReadFull(IDSource, buf); err != nil {
		return "", errors.Wrap(err, "rand fail")
	}
	return hex.EncodeToString(buf), nil
}

// GenID draws ids until claim accepts one. claim must reserve the id atomically
// and return false when it is already taken.
func GenID(retries int, claim func(id string) (bool, error)) (string, error) {
	for retry := 0; retry < retries; retry++ {
		id, err := NewID()
		if err != nil {
			return "", err
		}
		ok, err := claim(id)
		if err != nil {
			return "", err
		}
		if ok {
			return id, nil
		}
	}
	return "", errors.Wrapf(ErrIDExhausted, "%d attempts", retries)
}
