package blueprint

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/unicode/norm"

	"github.com/matzehuels/beltwright/pkg/errors"
)

const (
	prefix      = "BLUEPRINT:"
	digestLen   = 32
	headerCount = 12

	// epochTicks is the Unix epoch in 100ns ticks since 0001-01-01.
	epochTicks = 621355968000000000
)

// ToText encodes bp as a blueprint string.
func ToText(bp *Blueprint) (string, error) {
	h := bp.Header
	if strings.ContainsAny(h.GameVersion, ",\"") {
		return "", errors.New(errors.ErrCodeInvalidBlueprint, "game version %q contains a separator", h.GameVersion)
	}
	short := norm.NFC.String(h.ShortDesc)
	desc := norm.NFC.String(h.Desc)
	if err := errors.ValidateDescription(short); err != nil {
		return "", err
	}
	if err := errors.ValidateDescription(desc); err != nil {
		return "", err
	}

	payload, err := bp.MarshalBinary()
	if err != nil {
		return "", err
	}
	var zbuf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&zbuf, gzip.BestCompression)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "gzip writer")
	}
	if _, err := zw.Write(payload); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "compress payload")
	}
	if err := zw.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "compress payload")
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	fields := []string{
		"0",
		strconv.Itoa(h.Layout),
		strconv.Itoa(h.Icons[0]),
		strconv.Itoa(h.Icons[1]),
		strconv.Itoa(h.Icons[2]),
		strconv.Itoa(h.Icons[3]),
		strconv.Itoa(h.Icons[4]),
		"0",
		strconv.FormatInt(toTicks(h.Timestamp), 10),
		h.GameVersion,
		url.PathEscape(short),
		url.PathEscape(desc),
	}
	sb.WriteString(strings.Join(fields, ","))
	sb.WriteByte('"')
	sb.WriteString(base64.StdEncoding.EncodeToString(zbuf.Bytes()))

	body := sb.String()
	return body + "\"" + digest(body), nil
}

// FromText decodes a blueprint string. The digest is verified before the
// payload is decoded.
func FromText(s string) (*Blueprint, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, prefix) {
		return nil, errors.New(errors.ErrCodeInvalidBlueprint, "missing %s prefix", prefix)
	}
	q := strings.LastIndexByte(s, '"')
	if q < 0 || len(s)-q-1 != digestLen {
		return nil, errors.New(errors.ErrCodeInvalidBlueprint, "missing or malformed digest")
	}
	body, want := s[:q], s[q+1:]
	if got := digest(body); !strings.EqualFold(got, want) {
		return nil, errors.New(errors.ErrCodeChecksumMismatch, "digest %s does not match content digest %s", strings.ToUpper(want), got)
	}

	open := strings.IndexByte(body, '"')
	if open < 0 {
		return nil, errors.New(errors.ErrCodeInvalidBlueprint, "missing payload")
	}
	h, err := parseHeader(body[len(prefix):open])
	if err != nil {
		return nil, err
	}

	compressed, err := base64.StdEncoding.DecodeString(body[open+1:])
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBlueprint, err, "decode base64")
	}
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBlueprint, err, "open gzip")
	}
	payload, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBlueprint, err, "decompress payload")
	}

	bp := &Blueprint{Header: h}
	if err := bp.UnmarshalBinary(payload); err != nil {
		return nil, err
	}
	return bp, nil
}

func parseHeader(s string) (Header, error) {
	f := strings.Split(s, ",")
	if len(f) != headerCount {
		return Header{}, errors.New(errors.ErrCodeInvalidBlueprint, "header has %d fields, want %d", len(f), headerCount)
	}
	ints := make([]int64, 9)
	for i := range ints {
		v, err := strconv.ParseInt(f[i], 10, 64)
		if err != nil {
			return Header{}, errors.Wrap(errors.ErrCodeInvalidBlueprint, err, "header field %d", i)
		}
		ints[i] = v
	}
	short, err := url.PathUnescape(f[10])
	if err != nil {
		return Header{}, errors.Wrap(errors.ErrCodeInvalidBlueprint, err, "short description")
	}
	desc, err := url.PathUnescape(f[11])
	if err != nil {
		return Header{}, errors.Wrap(errors.ErrCodeInvalidBlueprint, err, "description")
	}
	return Header{
		Layout:      int(ints[1]),
		Icons:       [5]int{int(ints[2]), int(ints[3]), int(ints[4]), int(ints[5]), int(ints[6])},
		Timestamp:   fromTicks(ints[8]),
		GameVersion: f[9],
		ShortDesc:   short,
		Desc:        desc,
	}, nil
}

// digest returns the upper-case hex MD5F of s.
func digest(s string) string {
	h := NewMD5F()
	io.WriteString(h, s)
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}

func toTicks(t time.Time) int64 {
	return t.Unix()*10_000_000 + int64(t.Nanosecond()/100) + epochTicks
}

func fromTicks(ticks int64) time.Time {
	rel := ticks - epochTicks
	sec, rem := rel/10_000_000, rel%10_000_000
	if rem < 0 {
		sec--
		rem += 10_000_000
	}
	return time.Unix(sec, rem*100).UTC()
}

// String returns a one-line summary of a blueprint header.
func (h Header) String() string {
	return fmt.Sprintf("%q (layout %d, game %s, %s)", h.ShortDesc, h.Layout, h.GameVersion, h.Timestamp.Format(time.RFC3339))
}
