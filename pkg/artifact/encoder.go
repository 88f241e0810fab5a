package artifact

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/cybershield-id/registration-relay/pkg/types"
)

var ErrEncoding = errors.New("payment proof could not be read")

// Encode reads the whole file into memory and returns its base64 form
// together with the original name and declared media type.
func Encode(f File) (types.EncodedArtifact, error) {
	if f.Open == nil {
		return types.EncodedArtifact{}, fmt.Errorf("%w: no content", ErrEncoding)
	}
	rc, err := f.Open()
	if err != nil {
		return types.EncodedArtifact{}, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return types.EncodedArtifact{}, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	return types.EncodedArtifact{
		Filename:    f.Name,
		MimeType:    f.MediaType,
		SizeBytes:   uint64(len(data)),
		EncodedBody: base64.StdEncoding.EncodeToString(data),
	}, nil
}
