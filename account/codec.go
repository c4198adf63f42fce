package account

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const (
	recordVersionV1 = 1

	flagConfirmed       = 1 << 0
	flagProfileComplete = 1 << 1
)

func encodeRecord(acct *Account) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordVersionV1)

	var flags byte
	if acct.Confirmed {
		flags |= flagConfirmed
	}
	if acct.ProfileComplete {
		flags |= flagProfileComplete
	}
	buf.WriteByte(flags)

	if err := binary.Write(&buf, binary.BigEndian, acct.Version); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, acct.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, acct.ConfirmationIssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, acct.LoginCodeExpiresAt); err != nil {
		return nil, err
	}

	for _, s := range []string{
		acct.ID,
		acct.Email,
		acct.PasswordHash,
		acct.Role,
		acct.ConfirmationCode,
		acct.LoginCode,
		acct.FullName,
		acct.School,
		acct.Major,
		acct.Classification,
	} {
		if err := writeString(&buf, s); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*Account, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordVersionV1 {
		return nil, errors.New("invalid account record version")
	}

	flags, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	acct := &Account{
		Confirmed:       flags&flagConfirmed != 0,
		ProfileComplete: flags&flagProfileComplete != 0,
	}

	if err := binary.Read(reader, binary.BigEndian, &acct.Version); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &acct.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &acct.ConfirmationIssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &acct.LoginCodeExpiresAt); err != nil {
		return nil, err
	}

	for _, dst := range []*string{
		&acct.ID,
		&acct.Email,
		&acct.PasswordHash,
		&acct.Role,
		&acct.ConfirmationCode,
		&acct.LoginCode,
		&acct.FullName,
		&acct.School,
		&acct.Major,
		&acct.Classification,
	} {
		s, err := readString(reader)
		if err != nil {
			return nil, err
		}
		*dst = s
	}

	return acct, nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > 65535 {
		return errors.New("account record field too long")
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	buf.WriteString(s)
	return nil
}

func readString(reader *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(reader, binary.BigEndian, &n); err != nil {
		return "", err
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}
