package utils

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/doskvol-ltd/doskvol/internal/config"

	"github.com/gin-gonic/gin"
)

// Alphabet shared by session tokens and invite codes.
const codeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Session tokens are 25 characters, invite codes 6.
const SessionTokenLength = 25
const InviteCodeLength = 6

// RandomString returns a string of the given length drawn from the
// alphanumeric alphabet using a cryptographically secure source.
func RandomString(length int) (string, error) {
	chars := make([]byte, length)

	for i := range chars {
		index, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		chars[i] = codeAlphabet[index.Int64()]
	}

	return string(chars), nil
}

func GetContext(c *gin.Context) (config.UserContext, error) {
	userContextValue, exists := c.Get("context")

	if !exists {
		return config.UserContext{}, errors.New("no user context in request")
	}

	userContext, ok := userContextValue.(*config.UserContext)

	if !ok {
		return config.UserContext{}, errors.New("invalid user context in request")
	}

	return *userContext, nil
}
