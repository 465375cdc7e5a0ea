// Package vnpay builds signed payment redirect URLs for the VNPay gateway.
package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Gateway protocol constants. These are fixed by the VNPay API contract.
const (
	version   = "2.1.0"
	command   = "pay"
	currency  = "VND"
	orderType = "other"
	locale    = "vn"

	// Timestamps are formatted in the gateway's local timezone.
	timeLayout = "20060102150405"

	// A payment link stays valid this long after creation.
	expireAfter = 15 * time.Minute
)

// gatewayZone is Indochina Time (UTC+7), the timezone VNPay expects
// timestamps in regardless of where the server runs.
var gatewayZone = time.FixedZone("ICT", 7*60*60)

// Config carries the merchant credentials and gateway endpoints.
type Config struct {
	TmnCode    string // merchant code issued by VNPay
	HashSecret string // shared secret for request signing
	PayURL     string // gateway payment endpoint
	ReturnURL  string // where the gateway redirects the customer afterwards
}

// Client builds payment URLs for a single merchant configuration.
type Client struct {
	cfg Config
	now func() time.Time
}

func New(cfg Config) *Client {
	return &Client{cfg: cfg, now: time.Now}
}

// WithClock overrides the client's time source. Intended for tests, the
// signature covers the create and expire timestamps so fixed inputs only
// produce a fixed URL under a fixed clock.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// BuildPaymentURL returns the signed redirect URL for a payment. The amount
// is in major currency units and is converted to VNPay's minor-unit integer
// by truncation.
func (c *Client) BuildPaymentURL(paymentID string, amount float64, clientIP string) string {
	now := c.now().In(gatewayZone)

	params := map[string]string{
		"vnp_Version":    version,
		"vnp_Command":    command,
		"vnp_TmnCode":    c.cfg.TmnCode,
		"vnp_Amount":     strconv.FormatInt(int64(amount*100), 10),
		"vnp_CurrCode":   currency,
		"vnp_TxnRef":     paymentID,
		"vnp_OrderInfo":  "Thanh toan don hang:" + paymentID,
		"vnp_OrderType":  orderType,
		"vnp_Locale":     locale,
		"vnp_ReturnUrl":  c.cfg.ReturnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": now.Format(timeLayout),
		"vnp_ExpireDate": now.Add(expireAfter).Format(timeLayout),
	}

	query := canonicalQuery(params)
	hash := HMACSHA512(c.cfg.HashSecret, query)

	return c.cfg.PayURL + "?" + query + "&vnp_SecureHash=" + hash
}

// canonicalQuery serializes params sorted by name with form-encoded values.
// Fields with empty values are left out of the string entirely, the gateway
// signs only what it receives.
func canonicalQuery(params map[string]string) string {
	names := make([]string, 0, len(params))
	for name, value := range params {
		if value == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[name]))
	}
	return b.String()
}

// HMACSHA512 computes the keyed hash of data and renders it as lowercase hex.
func HMACSHA512(key, data string) string {
	mac := hmac.New(sha512.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
