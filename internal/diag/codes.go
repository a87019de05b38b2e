package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Program description (loader) errors
	PrsInfo              Code = 1000
	PrsDecode            Code = 1001
	PrsUnknownKind       Code = 1002
	PrsMissingName       Code = 1003
	PrsDuplicateType     Code = 1004
	PrsDuplicateFunc     Code = 1005
	PrsBadTypeRef        Code = 1006
	PrsBadSelector       Code = 1007
	PrsBadAttr           Code = 1008
	PrsPunBlockEmpty     Code = 1009
	PrsPunBlockExtraType Code = 1010
	PrsPunBlockWrongName Code = 1011
	PrsPunBlockFunc      Code = 1012
	PrsBadArrayLen       Code = 1013
	PrsDuplicateMember   Code = 1014
	PrsMissingField      Code = 1015
	PrsBadName           Code = 1016

	// Type checking errors
	TypInfo          Code = 2000
	TypUndefinedName Code = 2001
	TypPunNoMatch    Code = 2002

	// Layout errors
	TypRecursiveUnsized   Code = 2003
	TypLayoutAttrConflict Code = 2004
	TypLayoutOverflow     Code = 2005

	// I/O
	IOLoadFileError Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	PrsInfo:               "Program description information",
	PrsDecode:             "Malformed program description",
	PrsUnknownKind:        "Unknown declaration kind",
	PrsMissingName:        "Declaration has no name",
	PrsDuplicateType:      "Duplicate type declaration",
	PrsDuplicateFunc:      "Duplicate function declaration",
	PrsBadTypeRef:         "Malformed type reference",
	PrsBadSelector:        "Malformed pun selector",
	PrsBadAttr:            "Malformed attribute",
	PrsPunBlockEmpty:      "Pun block declares no type",
	PrsPunBlockExtraType:  "Pun block declares more than one type",
	PrsPunBlockWrongName:  "Pun block type name differs from the pun",
	PrsPunBlockFunc:       "Pun block declares a function",
	PrsBadArrayLen:        "Array length is not a non-negative integer",
	PrsDuplicateMember:    "Duplicate field or variant",
	PrsMissingField:       "Required key is missing",
	PrsBadName:            "Declared name is not an identifier",
	TypInfo:               "Type checking information",
	TypUndefinedName:      "Use of undefined type name",
	TypPunNoMatch:         "Pun has no block matching the target",
	TypRecursiveUnsized:   "Recursive value type has infinite size",
	TypLayoutAttrConflict: "Conflicting layout attributes",
	TypLayoutOverflow:     "Type size overflows",
	IOLoadFileError:       "I/O error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("PRS%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
