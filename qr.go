package snapscan

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// queryBuilder encodes parameters in insertion order, unlike url.Values.
type queryBuilder struct {
	sb strings.Builder
}

func (q *queryBuilder) Add(key, value string) {
	if q.sb.Len() > 0 {
		q.sb.WriteByte('&')
	}
	q.sb.WriteString(url.QueryEscape(key))
	q.sb.WriteByte('=')
	q.sb.WriteString(url.QueryEscape(value))
}

func (q *queryBuilder) String() string {
	return q.sb.String()
}

// MinorUnits converts a major-unit amount to cents, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// QRCodeURL builds the image URL of the merchant's QR code. No request is made.
func (c *Client) QRCodeURL(opts QRCodeOptions) (string, error) {
	config, _, _ := c.snapshot()
	if config.Snapcode == "" {
		return "", configurationError("SetSnapcode")
	}

	size := opts.Size
	if size == 0 {
		size = DefaultSnapCodeSize
	}
	format := normalizeFormat(opts.Format)

	var query queryBuilder
	query.Add("snap_code_size", strconv.Itoa(size))
	if opts.ID != "" {
		query.Add("id", opts.ID)
	}
	if opts.Amount.Valid {
		query.Add("amount", strconv.FormatInt(MinorUnits(opts.Amount.Decimal), 10))
	}
	if opts.Strict {
		query.Add("strict", "true")
	}

	return config.BaseURL + qrPath + "/" + url.PathEscape(config.Snapcode) + string(format) + "?" + query.String(), nil
}

func normalizeFormat(format ImageFormat) ImageFormat {
	if format == "" {
		return ImageFormatPNG
	}
	if !strings.HasPrefix(string(format), ".") {
		return ImageFormat("." + string(format))
	}
	return format
}

// ParseQRCodeURL extracts the snapcode and options from a QR code URL.
func ParseQRCodeURL(rawURL string) (*QRCode, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse QR code URL")
	}

	// The snapcode is path-escaped, so split before unescaping.
	dir, file := path.Split(u.EscapedPath())
	if !strings.HasSuffix(dir, qrPath+"/") || file == "" {
		return nil, errors.Errorf("invalid QR code URL path %q", u.Path)
	}

	ext := path.Ext(file)
	snapcode, err := url.PathUnescape(strings.TrimSuffix(file, ext))
	if err != nil {
		return nil, errors.Wrap(err, "invalid snapcode")
	}
	if ext == "" || snapcode == "" {
		return nil, errors.Errorf("invalid QR code image name %q", file)
	}

	values := u.Query()
	qr := &QRCode{
		Snapcode: snapcode,
		Options: QRCodeOptions{
			ID:     values.Get("id"),
			Strict: values.Get("strict") == "true",
			Size:   DefaultSnapCodeSize,
			Format: ImageFormat(ext),
		},
	}

	if size := values.Get("snap_code_size"); size != "" {
		qr.Options.Size, err = strconv.Atoi(size)
		if err != nil {
			return nil, errors.Wrap(err, "invalid snap_code_size")
		}
	}

	if amount := values.Get("amount"); amount != "" {
		cents, err := strconv.ParseInt(amount, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "invalid amount")
		}
		qr.Options.Amount = decimal.NewNullDecimal(decimal.New(cents, -2))
	}

	return qr, nil
}
