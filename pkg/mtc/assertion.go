package mtc

import (
	"github.com/Mindburn-Labs/mtc/pkg/codec"
)

// Assertion binds a subject (subject_type, subject_info) to the claims
// made about it. It is the leaf unit of a batch: the Merkle tree builder
// hashes one leaf per Assertion.
type Assertion struct {
	SubjectType SubjectType
	SubjectInfo SubjectInfo
	Claims      ClaimList
}

func (a Assertion) Serialize() []byte {
	out := a.SubjectType.Serialize()
	out = append(out, a.SubjectInfo.Serialize()...)
	out = append(out, a.Claims.Serialize()...)
	return out
}

func (a Assertion) Validate() error {
	if err := a.SubjectType.Validate(); err != nil {
		return err
	}
	return a.Claims.Validate()
}

// ParseAssertion reads subject_type, subject_info, and claims in
// declared struct order.
func ParseAssertion(data []byte, offset int, opts codec.Options) (Assertion, int, error) {
	st, next, err := ParseSubjectType(data, offset)
	if err != nil {
		return Assertion{}, offset, err
	}
	si, next, err := ParseSubjectInfo(data, next)
	if err != nil {
		return Assertion{}, offset, err
	}
	claims, next, err := ParseClaimList(data, next, opts)
	if err != nil {
		return Assertion{}, offset, err
	}
	a := Assertion{SubjectType: st, SubjectInfo: si, Claims: claims}
	if !opts.SkipValidate {
		if err := a.Validate(); err != nil {
			return Assertion{}, offset, err
		}
	}
	return a, next, nil
}

// SkipAssertion advances past an Assertion struct.
func SkipAssertion(data []byte, offset int) (int, error) {
	next, err := SkipSubjectType(data, offset)
	if err != nil {
		return offset, err
	}
	next, err = SkipSubjectInfo(data, next)
	if err != nil {
		return offset, err
	}
	return SkipClaimList(data, next)
}

// assertionsSpec bounds an Assertions batch payload to [0, 2^32-1]
// bytes, a 4-byte marker — batches may be large.
var assertionsSpec = codec.NewVectorSpec(0, 1<<32-1)

// Assertions is the Vector<Assertion> comprising one issuance batch.
type Assertions struct {
	List []Assertion
}

func (a Assertions) Serialize() []byte {
	return codec.SerializeVector(assertionsSpec, a.List, Assertion.Serialize)
}

func (a Assertions) Validate() error {
	for _, item := range a.List {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ParseAssertions reads a length-prefixed vector of Assertion values.
func ParseAssertions(data []byte, offset int, opts codec.Options) (Assertions, int, error) {
	list, next, err := codec.ParseVector(assertionsSpec, data, offset, opts, ParseAssertion)
	if err != nil {
		return Assertions{}, offset, err
	}
	return Assertions{List: list}, next, nil
}
