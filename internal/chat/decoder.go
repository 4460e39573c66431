package chat

import "bytes"

var (
	recordSep  = []byte("\n\n")
	dataPrefix = []byte("data:")
)

// streamDecoder incrementally splits the chunked response body into the data
// payloads of complete event-stream records. It works on raw bytes and only
// converts to string once a record's terminating blank line has been seen, so
// a multi-byte UTF-8 sequence split across chunk boundaries is reassembled
// before any text handling happens.
type streamDecoder struct {
	buf []byte
}

// feed appends a chunk to the rolling buffer and returns the data payloads of
// every record completed by it, in arrival order. Bytes after the last record
// separator stay buffered until a later chunk completes them; a partial record
// is never parsed speculatively.
func (d *streamDecoder) feed(chunk []byte) []string {
	d.buf = append(d.buf, chunk...)

	var payloads []string
	for {
		i := bytes.Index(d.buf, recordSep)
		if i < 0 {
			return payloads
		}
		record := d.buf[:i]
		d.buf = d.buf[i+len(recordSep):]

		for _, line := range bytes.Split(record, []byte("\n")) {
			line = bytes.TrimSuffix(line, []byte("\r"))
			if !bytes.HasPrefix(line, dataPrefix) {
				continue
			}
			payloads = append(payloads, string(bytes.TrimSpace(line[len(dataPrefix):])))
		}
	}
}
