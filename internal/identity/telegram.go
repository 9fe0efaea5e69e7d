package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const InitDataMaxAge = time.Hour

// TelegramVerifier checks the signed initData a Telegram Mini App hands to its page.
type TelegramVerifier struct {
	botToken string
	now      func() time.Time
}

func NewTelegramVerifier(botToken string) *TelegramVerifier {
	return &TelegramVerifier{botToken: botToken, now: time.Now}
}

func (v *TelegramVerifier) secret() []byte {
	mac := hmac.New(sha256.New, []byte("WebAppData"))
	mac.Write([]byte(v.botToken))
	return mac.Sum(nil)
}

func dataCheckString(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params.Get(k))
	}
	return strings.Join(pairs, "\n")
}

// Sign computes the hash Telegram would attach to params.
func (v *TelegramVerifier) Sign(params url.Values) string {
	mac := hmac.New(sha256.New, v.secret())
	mac.Write([]byte(dataCheckString(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

func (v *TelegramVerifier) Verify(initData string) (Identity, error) {
	if len(initData) == 0 {
		return Identity{}, ErrMissingCredentials
	}
	params, err := url.ParseQuery(initData)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}
	hash := params.Get("hash")
	if len(hash) == 0 || len(v.botToken) == 0 {
		return Identity{}, ErrInvalidInitData
	}
	expected := v.Sign(params)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(hash))) {
		return Identity{}, ErrInvalidInitData
	}
	authDate, _ := strconv.ParseInt(params.Get("auth_date"), 10, 64)
	if v.now().Sub(time.Unix(authDate, 0)) > InitDataMaxAge {
		return Identity{}, ErrExpiredInitData
	}
	var user telegramUser
	if err := json.Unmarshal([]byte(params.Get("user")), &user); err != nil || user.ID == 0 {
		return Identity{}, ErrInvalidInitData
	}
	return user.identity(), nil
}
