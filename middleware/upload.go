package middleware

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"collegeoffice_go/storage"
	"collegeoffice_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	StudentFiles = []string{
		"studentPhoto", "nicFront", "nicBack", "studentSignature", "birthCertificate",
		"medicalReport", "guardianNic", "guardianPhoto", "leavingCertificate",
	}
	TeacherFiles = []string{
		"profilePhoto", "cvFile", "certificates", "nicCopy", "qualification",
		"nicFront", "nicBack", "birthCertificate",
	}
)

// UploadedFile is what handlers receive for each saved multipart field.
type UploadedFile struct {
	URL          string
	Size         int64
	OriginalName string
}

type Uploader struct {
	store             storage.Store
	maxFileSize       int64
	allowedExtensions []string
	imageMaxWidth     int
}

func NewUploader(store storage.Store, maxFileSize int64, allowedExtensions string, imageMaxWidth int) *Uploader {
	return &Uploader{
		store:             store,
		maxFileSize:       maxFileSize,
		allowedExtensions: strings.Split(allowedExtensions, ","),
		imageMaxWidth:     imageMaxWidth,
	}
}

func (u *Uploader) Store() storage.Store { return u.store }

// Fields saves the named multipart fields as "<id>-<field><ext>". The id
// comes from indexNumber, then empId, then the :id route param.
func (u *Uploader) Fields(fields ...string) fiber.Handler {
	return u.handler(fields, false)
}

// Document saves a single "document" field under a unique name so several
// documents per owner can coexist.
func (u *Uploader) Document() fiber.Handler {
	return u.handler([]string{"document"}, true)
}

func (u *Uploader) handler(fields []string, unique bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			// Not multipart; handlers read the plain body.
			return c.Next()
		}

		id := ownerID(c, form.Value)
		saved := make(map[string]UploadedFile)
		for _, field := range fields {
			headers := form.File[field]
			if len(headers) == 0 {
				continue
			}
			fh := headers[0]
			if u.maxFileSize > 0 && fh.Size > u.maxFileSize {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"message": fmt.Sprintf("%s exceeds the %s upload limit", fh.Filename, utils.FormatFileSize(u.maxFileSize)),
				})
			}
			if !utils.IsValidFileExtension(fh.Filename, u.allowedExtensions) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"message": fmt.Sprintf("File type of %s is not allowed", fh.Filename),
				})
			}

			name := storage.ObjectName(id, field, fh.Filename)
			if unique {
				ext := filepath.Ext(name)
				name = strings.TrimSuffix(name, ext) + "-" + uuid.NewString()[:8] + ext
			}

			src, err := fh.Open()
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Failed to open uploaded file")
			}
			data, err := io.ReadAll(src)
			src.Close()
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Failed to read uploaded file")
			}
			out, resized, err := storage.ShrinkImage(data, fh.Filename, u.imageMaxWidth)
			if err != nil {
				logrus.WithError(err).WithField("file", fh.Filename).Warn("Image could not be processed, storing original")
			} else {
				data = out
			}

			url, err := u.store.Save(c.UserContext(), name, bytes.NewReader(data), int64(len(data)), storage.ContentType(filepath.Ext(name)))
			if err != nil {
				logrus.WithError(err).WithField("field", field).Error("Failed to store upload")
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "File upload failed"})
			}
			logrus.WithFields(logrus.Fields{"field": field, "url": url, "resized": resized}).Debug("Stored upload")
			saved[field] = UploadedFile{URL: url, Size: int64(len(data)), OriginalName: fh.Filename}
		}

		c.Locals("uploads", saved)
		return c.Next()
	}
}

func ownerID(c *fiber.Ctx, values map[string][]string) string {
	for _, key := range []string{"indexNumber", "empId"} {
		if v := values[key]; len(v) > 0 && strings.TrimSpace(v[0]) != "" {
			return v[0]
		}
	}
	if id := c.Params("id"); id != "" {
		return id
	}
	return ""
}

// Uploads returns the files saved for this request, keyed by form field.
func Uploads(c *fiber.Ctx) map[string]UploadedFile {
	files, _ := c.Locals("uploads").(map[string]UploadedFile)
	if files == nil {
		return map[string]UploadedFile{}
	}
	return files
}

// UploadURL returns the stored URL for field or nil when no file was sent.
func UploadURL(c *fiber.Ctx, field string) *string {
	f, ok := Uploads(c)[field]
	if !ok {
		return nil
	}
	url := f.URL
	return &url
}
