package assetcache

// Warning header codes from RFC 7234 §5.5 (the field is obsoleted by RFC
// 9111 but still carried here as a backward-compatible enrichment).
const (
	warningResponseIsStale    = `110 - "Response is Stale"`
	warningRevalidationFailed = `111 - "Revalidation Failed"`
)

// addWarningHeader appends a Warning header; unlike Set, Warning values
// stack, so this always uses Add.
func addWarningHeader(resp *Response, code string) {
	if resp == nil {
		return
	}
	resp.Headers.Add("Warning", code)
}

func addStaleWarning(resp *Response)              { addWarningHeader(resp, warningResponseIsStale) }
func addRevalidationFailedWarning(resp *Response) { addWarningHeader(resp, warningRevalidationFailed) }
