package backoffice_integration_utils

import (
	"bytes"
	"compress/gzip"
	"io"
)

// Audit bodies are stored compressed; anything below this is not worth the
// gzip header overhead.
const compressThreshold = 256

func CompressData(data []byte) ([]byte, error) {
	if len(data) < compressThreshold {
		return data, nil
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecompressData(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		// Not gzip, stored verbatim
		return data, nil
	}

	gz, err := gzip.NewReader(bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	return io.ReadAll(gz)
}
