package messaging

// Subjects follow the pattern {domain}.{resource}.{action}.
const (
	// SubjectHeadersDecoded carries every header block the pipeline accepted.
	SubjectHeadersDecoded = "csv.headers.decoded"

	// SubjectHeadersRejected carries header lines that failed to load or decode.
	SubjectHeadersRejected = "csv.headers.rejected"
)

// Metadata keys set on published header messages.
const (
	MetaSource    = "Csv-Source"
	MetaEnvelope  = "Csv-Envelope-Id"
	MetaRequestID = "X-Request-ID"
)

// SourceSubject scopes subject to a single source, e.g. csv.headers.decoded.firewall.
func SourceSubject(subject, source string) string {
	if source == "" {
		return subject
	}
	return subject + "." + source
}
