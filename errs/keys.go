// Package errs holds the translation keys and sentinel errors shared by the
// command engine and its collaborator packages.
package errs

const (
	prefixKey = "cocoa"
)

const (
	ErrorPrefixKey    = prefixKey + ".error"
	ParseErrorPathKey = ErrorPrefixKey + ".parse"
	ArgErrorPathKey   = ErrorPrefixKey + ".arg"
	TagErrorPathKey   = ErrorPrefixKey + ".tag"
	MessagePrefixKey  = prefixKey + ".message"
)

// Registration and dispatch errors
const (
	ErrRegistrationKey       = ErrorPrefixKey + ".registration"
	ErrParserNotFoundKey     = ErrorPrefixKey + ".parser_not_found"
	ErrMalformedPathKey      = ErrorPrefixKey + ".malformed_path"
	ErrArityMismatchKey      = ErrorPrefixKey + ".arity_mismatch"
	ErrParamTypeKey          = ErrorPrefixKey + ".param_type"
	ErrNilHandlerKey         = ErrorPrefixKey + ".nil_handler"
	ErrEmptyLabelKey         = ErrorPrefixKey + ".empty_label"
	ErrEmptyInputKey         = ErrorPrefixKey + ".empty_input"
	ErrCommandNotFoundKey    = ErrorPrefixKey + ".command_not_found"
	ErrNoMatchingVariantKey  = ErrorPrefixKey + ".no_matching_variant"
	ErrRequirementsNotMetKey = ErrorPrefixKey + ".requirements_not_met"
	ErrInvalidArgumentKey    = ErrorPrefixKey + ".invalid_argument"
	ErrNotHandledKey         = ErrorPrefixKey + ".not_handled"
	ErrTokenizeKey           = ErrorPrefixKey + ".tokenize"
)

// Parser errors
const (
	ErrParseMissingKey   = ParseErrorPathKey + ".missing"
	ErrParseIntKey       = ParseErrorPathKey + ".int"
	ErrParseFloatKey     = ParseErrorPathKey + ".float"
	ErrParseBoolKey      = ParseErrorPathKey + ".bool"
	ErrParseEnumKey      = ParseErrorPathKey + ".enum"
	ErrParseDurationKey  = ParseErrorPathKey + ".duration"
	ErrParseTimeKey      = ParseErrorPathKey + ".time"
	ErrParseUUIDKey      = ParseErrorPathKey + ".uuid"
	ErrParseUnknownKey   = ParseErrorPathKey + ".unknown_value"
	ErrParseNegatedKey   = ParseErrorPathKey + ".negated"
	ErrParseEmptyTextKey = ParseErrorPathKey + ".empty_text"
)

// Argument requirement errors
const (
	ErrArgOutOfRangeKey = ArgErrorPathKey + ".out_of_range"
	ErrArgPatternKey    = ArgErrorPathKey + ".pattern"
	ErrArgEmptyKey      = ArgErrorPathKey + ".empty"
	ErrArgNotOneOfKey   = ArgErrorPathKey + ".not_one_of"
	ErrArgTypeKey       = ArgErrorPathKey + ".type"
	ErrArgMissingKey    = ArgErrorPathKey + ".missing"
)

// Tag errors
const (
	ErrTagInvalidFormatKey = TagErrorPathKey + ".invalid_format"
	ErrTagUnknownKeyKey    = TagErrorPathKey + ".unknown_key"
	ErrTagInvalidValueKey  = TagErrorPathKey + ".invalid_value"
	ErrTagInvalidKindKey   = TagErrorPathKey + ".invalid_kind"
	ErrNotAStructKey       = TagErrorPathKey + ".not_a_struct"
	ErrBadSignatureKey     = TagErrorPathKey + ".bad_signature"
)

// Messages shown to senders
const (
	MsgUnknownCommandKey = MessagePrefixKey + ".unknown_command"
	MsgNoPermissionKey   = MessagePrefixKey + ".no_permission"
	MsgInternalErrorKey  = MessagePrefixKey + ".internal_error"
	MsgWelcomeKey        = MessagePrefixKey + ".welcome"
	MsgHistoryEntryKey   = MessagePrefixKey + ".history_entry"
	MsgCommandListKey    = MessagePrefixKey + ".command_list"
)
