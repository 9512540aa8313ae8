package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appdoc "github.com/turtacn/InsureDoc-Intelligence/internal/application/document"
	"github.com/turtacn/InsureDoc-Intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// multipartOverhead is headroom for multipart boundaries and headers on top
// of the file size limit.
const multipartOverhead = 64 << 10

// respondError writes the error envelope for err.
func respondError(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

// readUpload reads the multipart "file" field for the authenticated caller.
func readUpload(c *gin.Context, maxBytes int64) (*appdoc.Upload, error) {
	id, err := middleware.IdentityFrom(c)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fileTooLarge(maxBytes)
		}
		return nil, errors.New(errors.ErrCodeMissingFile, "file is required")
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, fileTooLarge(maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "could not read uploaded file")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "could not read uploaded file")
	}

	return &appdoc.Upload{
		TenantID:    id.TenantID,
		UserID:      id.UserID,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func fileTooLarge(maxBytes int64) error {
	return errors.Newf(errors.ErrCodeFileTooLarge, "File exceeds the %d byte upload limit.", maxBytes)
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errors.InvalidArgument("invalid " + name)
	}
	return id, nil
}

// intQuery parses an optional integer query parameter.
func intQuery(c *gin.Context, name string, def int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.InvalidArgument(name + " must be an integer")
	}
	return n, nil
}
