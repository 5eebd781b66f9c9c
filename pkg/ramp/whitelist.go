package ramp

import (
	"errors"
	"sync"
)

// Whitelist errors
var (
	ErrUserNotWhitelisted = errors.New("user is not whitelisted")
	ErrUserDataNotFound   = errors.New("no user data prepared")
)

// UserData holds the off-chain identity a user registers per currency.
// Payment methods and the telegram handle are private and only revealed to
// callers entitled to them.
type UserData struct {
	Address        string   `json:"address"`
	Currency       string   `json:"currency"`
	TelegramHandle string   `json:"telegramHandle,omitempty"`
	PaymentMethods []string `json:"paymentMethods,omitempty"`
	Whitelisted    bool     `json:"whitelisted"`
}

type whitelistKey struct {
	address  string
	currency string
}

// Whitelist keeps per-currency user registrations in two stages: users
// prepare their data, an owner whitelists it, and only whitelisted data is
// live. Updating prepared data does not touch the live copy until the user
// is whitelisted again.
type Whitelist struct {
	mu       sync.RWMutex
	prepared map[whitelistKey]UserData
	live     map[whitelistKey]UserData
}

// NewWhitelist creates an empty whitelist
func NewWhitelist() *Whitelist {
	return &Whitelist{
		prepared: make(map[whitelistKey]UserData),
		live:     make(map[whitelistKey]UserData),
	}
}

// UpdateUser stages the user's data for the given currency
func (w *Whitelist) UpdateUser(address, currency, telegramHandle string, paymentMethods []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prepared[whitelistKey{address, currency}] = UserData{
		Address:        address,
		Currency:       currency,
		TelegramHandle: telegramHandle,
		PaymentMethods: append([]string(nil), paymentMethods...),
	}
}

// WhitelistUser promotes the user's prepared data to live
func (w *Whitelist) WhitelistUser(address, currency string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := whitelistKey{address, currency}
	data, ok := w.prepared[key]
	if !ok {
		return ErrUserDataNotFound
	}

	data.Whitelisted = true
	w.live[key] = data
	return nil
}

// DelistUser revokes the user's whitelisted status for the currency. Prepared
// data stays, so the user can be whitelisted again without re-registering.
func (w *Whitelist) DelistUser(address, currency string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.live, whitelistKey{address, currency})
}

// IsWhitelisted reports whether the user is live for the currency
func (w *Whitelist) IsWhitelisted(address, currency string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	_, ok := w.live[whitelistKey{address, currency}]
	return ok
}

// UserData returns the live user data. With includePrivate false, the
// telegram handle and payment methods are stripped.
func (w *Whitelist) UserData(address, currency string, includePrivate bool) (UserData, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	data, ok := w.live[whitelistKey{address, currency}]
	if !ok {
		return UserData{}, ErrUserNotWhitelisted
	}

	if !includePrivate {
		data.TelegramHandle = ""
		data.PaymentMethods = nil
	}
	return data, nil
}
