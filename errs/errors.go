package errs

import "github.com/CyberRei/cocoa-beans/commands/i18n"

// Registration and dispatch errors
var (
	ErrRegistration       = i18n.NewError(ErrRegistrationKey)
	ErrParserNotFound     = i18n.NewError(ErrParserNotFoundKey)
	ErrMalformedPath      = i18n.NewError(ErrMalformedPathKey)
	ErrArityMismatch      = i18n.NewError(ErrArityMismatchKey)
	ErrParamType          = i18n.NewError(ErrParamTypeKey)
	ErrNilHandler         = i18n.NewError(ErrNilHandlerKey)
	ErrEmptyLabel         = i18n.NewError(ErrEmptyLabelKey)
	ErrEmptyInput         = i18n.NewError(ErrEmptyInputKey)
	ErrCommandNotFound    = i18n.NewError(ErrCommandNotFoundKey)
	ErrNoMatchingVariant  = i18n.NewError(ErrNoMatchingVariantKey)
	ErrRequirementsNotMet = i18n.NewError(ErrRequirementsNotMetKey)
	ErrInvalidArgument    = i18n.NewError(ErrInvalidArgumentKey)
	ErrNotHandled         = i18n.NewError(ErrNotHandledKey)
	ErrTokenize           = i18n.NewError(ErrTokenizeKey)
)

// Parser errors
var (
	ErrParseMissing   = i18n.NewError(ErrParseMissingKey)
	ErrParseInt       = i18n.NewError(ErrParseIntKey)
	ErrParseFloat     = i18n.NewError(ErrParseFloatKey)
	ErrParseBool      = i18n.NewError(ErrParseBoolKey)
	ErrParseEnum      = i18n.NewError(ErrParseEnumKey)
	ErrParseDuration  = i18n.NewError(ErrParseDurationKey)
	ErrParseTime      = i18n.NewError(ErrParseTimeKey)
	ErrParseUUID      = i18n.NewError(ErrParseUUIDKey)
	ErrParseUnknown   = i18n.NewError(ErrParseUnknownKey)
	ErrParseNegated   = i18n.NewError(ErrParseNegatedKey)
	ErrParseEmptyText = i18n.NewError(ErrParseEmptyTextKey)
)

// Argument requirement errors
var (
	ErrArgOutOfRange = i18n.NewError(ErrArgOutOfRangeKey)
	ErrArgPattern    = i18n.NewError(ErrArgPatternKey)
	ErrArgEmpty      = i18n.NewError(ErrArgEmptyKey)
	ErrArgNotOneOf   = i18n.NewError(ErrArgNotOneOfKey)
	ErrArgType       = i18n.NewError(ErrArgTypeKey)
	ErrArgMissing    = i18n.NewError(ErrArgMissingKey)
)

// Tag errors
var (
	ErrTagInvalidFormat = i18n.NewError(ErrTagInvalidFormatKey)
	ErrTagUnknownKey    = i18n.NewError(ErrTagUnknownKeyKey)
	ErrTagInvalidValue  = i18n.NewError(ErrTagInvalidValueKey)
	ErrTagInvalidKind   = i18n.NewError(ErrTagInvalidKindKey)
	ErrNotAStruct       = i18n.NewError(ErrNotAStructKey)
	ErrBadSignature     = i18n.NewError(ErrBadSignatureKey)
)
