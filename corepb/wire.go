// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package corepb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// message is implemented by every type in this package.
type message interface {
	marshal(b []byte) []byte
	unmarshalField(num protowire.Number, typ protowire.Type,
		b []byte) (int, error)
}

func unmarshalMessage(b []byte, m message) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n, err := m.unmarshalField(num, typ, b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func wireTypeError(num protowire.Number, typ protowire.Type) error {
	return fmt.Errorf("field %d has unexpected wire type %d", num, typ)
}

func skipField(num protowire.Number, typ protowire.Type,
	b []byte) (int, error) {

	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, nil
}

func consumeBytes(num protowire.Number, typ protowire.Type,
	b []byte) ([]byte, int, error) {

	if typ != protowire.BytesType {
		return nil, 0, wireTypeError(num, typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeString(num protowire.Number, typ protowire.Type,
	b []byte) (string, int, error) {

	v, n, err := consumeBytes(num, typ, b)
	return string(v), n, err
}

func consumeRepeatedString(num protowire.Number, typ protowire.Type,
	b []byte, dst *[]string) (int, error) {

	s, n, err := consumeString(num, typ, b)
	if err != nil {
		return 0, err
	}
	*dst = append(*dst, s)
	return n, nil
}

func consumeOwnedBytes(num protowire.Number, typ protowire.Type,
	b []byte) ([]byte, int, error) {

	v, n, err := consumeBytes(num, typ, b)
	if err != nil {
		return nil, 0, err
	}
	return append([]byte(nil), v...), n, nil
}

func consumeUint64(num protowire.Number, typ protowire.Type,
	b []byte) (uint64, int, error) {

	if typ != protowire.VarintType {
		return 0, 0, wireTypeError(num, typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeUint32(num protowire.Number, typ protowire.Type,
	b []byte) (uint32, int, error) {

	v, n, err := consumeUint64(num, typ, b)
	return uint32(v), n, err
}

func consumeBool(num protowire.Number, typ protowire.Type,
	b []byte) (bool, int, error) {

	v, n, err := consumeUint64(num, typ, b)
	return protowire.DecodeBool(v), n, err
}

func consumeMessage(num protowire.Number, typ protowire.Type, b []byte,
	m message) (int, error) {

	v, n, err := consumeBytes(num, typ, b)
	if err != nil {
		return 0, err
	}
	if err := unmarshalMessage(v, m); err != nil {
		return 0, err
	}
	return n, nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendUint64(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

// appendMessage always writes the field, so an empty message set in a
// oneof survives the round trip.
func appendMessage(b []byte, num protowire.Number, m message) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.marshal(nil))
}
