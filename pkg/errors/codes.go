package errors

import (
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes are namespaced by a module prefix ("COMMON", "MOL", "FRAG", ...).
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeUnknown         ErrorCode = "COMMON_000"
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeBadRequest      ErrorCode = "COMMON_002"
	ErrCodeNotFound        ErrorCode = "COMMON_005"
	ErrCodeTimeout         ErrorCode = "COMMON_009"
	ErrCodeValidation      ErrorCode = "COMMON_010"
	ErrCodeSerialization   ErrorCode = "COMMON_011"
	ErrCodeDatabaseError   ErrorCode = "COMMON_012"
	ErrCodeCacheError      ErrorCode = "COMMON_013"
	ErrCodeExternalService ErrorCode = "COMMON_014"
	ErrCodeCancelled       ErrorCode = "COMMON_017"
)

// Molecule Module Error Codes
const (
	ErrCodeMoleculeInvalidSMILES    ErrorCode = "MOL_001"
	ErrCodeMoleculeParsingFailed    ErrorCode = "MOL_006"
	ErrCodeMoleculeConversionFailed ErrorCode = "MOL_011"
	ErrCodeMoleculeValence          ErrorCode = "MOL_016"
	ErrCodeMoleculeKekulization     ErrorCode = "MOL_017"
	ErrCodeMoleculeInvalidEdit      ErrorCode = "MOL_018"
)

// Fragment Module Error Codes
const (
	ErrCodeFragmentCutFailed    ErrorCode = "FRAG_001"
	ErrCodeFragmentReduceFailed ErrorCode = "FRAG_002"
	ErrCodeClusterInvalid       ErrorCode = "FRAG_003"
)

// I/O and Sink Error Codes
const (
	ErrCodeCorpusReadFailed      ErrorCode = "IO_001"
	ErrCodeVocabularyWriteFailed ErrorCode = "IO_002"
	ErrCodeSinkFailed            ErrorCode = "SINK_001"
	ErrCodeStorageError          ErrorCode = "SINK_002"
	ErrCodeMessageQueueError     ErrorCode = "SINK_003"
)

// Short aliases used at call sites.
const (
	CodeUnknown       = ErrCodeUnknown
	CodeInternal      = ErrCodeInternal
	CodeInvalidParam  = ErrCodeBadRequest
	CodeNotFound      = ErrCodeNotFound
	CodeOK            = ErrorCode("OK")
	CodeDatabaseError = ErrCodeDatabaseError
	CodeCacheError    = ErrCodeCacheError
	CodeStorageError  = ErrCodeStorageError

	CodeMoleculeInvalidSMILES = ErrCodeMoleculeInvalidSMILES
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeUnknown:         "unknown error",
	ErrCodeInternal:        "internal error",
	ErrCodeBadRequest:      "bad request",
	ErrCodeNotFound:        "resource not found",
	ErrCodeTimeout:         "operation timed out",
	ErrCodeValidation:      "validation failed",
	ErrCodeSerialization:   "serialization failed",
	ErrCodeDatabaseError:   "database error",
	ErrCodeCacheError:      "cache error",
	ErrCodeExternalService: "external service error",
	ErrCodeCancelled:       "operation cancelled",

	ErrCodeMoleculeInvalidSMILES:    "invalid SMILES format",
	ErrCodeMoleculeParsingFailed:    "failed to parse molecule",
	ErrCodeMoleculeConversionFailed: "molecule format conversion failed",
	ErrCodeMoleculeValence:          "explicit valence exceeds allowed maximum",
	ErrCodeMoleculeKekulization:     "cannot kekulize aromatic system",
	ErrCodeMoleculeInvalidEdit:      "invalid molecule edit",

	ErrCodeFragmentCutFailed:    "fragment extraction failed",
	ErrCodeFragmentReduceFailed: "fragment reduction failed",
	ErrCodeClusterInvalid:       "invalid cluster",

	ErrCodeCorpusReadFailed:      "failed to read corpus",
	ErrCodeVocabularyWriteFailed: "failed to write vocabulary",
	ErrCodeSinkFailed:            "vocabulary sink failed",
	ErrCodeStorageError:          "object storage error",
	ErrCodeMessageQueueError:     "message queue error",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

// IsMoleculeError reports whether the code belongs to the molecule engine.
func IsMoleculeError(code ErrorCode) bool {
	return ModuleForCode(code) == "MOL"
}
