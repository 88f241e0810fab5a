package artifact

import (
	"bytes"
	"io"
	"mime/multipart"
)

// File is a candidate payment proof. Open is called once per encode.
type File struct {
	Name      string
	MediaType string
	Size      int64
	Open      func() (io.ReadCloser, error)
}

// FromFileHeader wraps an uploaded multipart file. The header must stay
// valid until the file is encoded.
func FromFileHeader(fh *multipart.FileHeader) File {
	return File{
		Name:      fh.Filename,
		MediaType: fh.Header.Get("Content-Type"),
		Size:      fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// Buffered reads r fully and returns a File backed by the bytes in memory.
// At most limit+1 bytes are read so oversize files still fail Check.
func Buffered(name, mediaType string, r io.Reader, limit int64) (File, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return File{}, err
	}
	return FromBytes(name, mediaType, data), nil
}

func FromBytes(name, mediaType string, data []byte) File {
	return File{
		Name:      name,
		MediaType: mediaType,
		Size:      int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
