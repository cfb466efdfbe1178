package api

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tendant/media-catalog/pkg/catalog"
)

// multipart parts above this size spill to temporary files
const multipartMemory = 32 << 20

var errRequestTooLarge = errors.New("request body too large")

// contentForm is a decoded create/update request. Close releases the
// uploaded parts.
type contentForm struct {
	Fields catalog.ContentFields
	Media  catalog.MediaUploads

	files []multipart.File
	form  *multipart.Form
}

func (f *contentForm) Close() {
	for _, file := range f.files {
		_ = file.Close()
	}
	if f.form != nil {
		_ = f.form.RemoveAll()
	}
}

// parseContentForm reads multipart or urlencoded fields. An absent field and
// an empty field are both treated as not provided.
func parseContentForm(r *http.Request) (*contentForm, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, errRequestTooLarge
		}
		return nil, badRequest("form", err)
	}

	form := &contentForm{form: r.MultipartForm}

	if err := form.decodeFields(r); err != nil {
		form.Close()
		return nil, err
	}

	for _, slot := range []catalog.MediaSlot{catalog.SlotThumbnail, catalog.SlotVideo} {
		payload, err := form.openFile(slot)
		if err != nil {
			form.Close()
			return nil, err
		}
		if slot == catalog.SlotThumbnail {
			form.Media.Thumbnail = payload
		} else {
			form.Media.Video = payload
		}
	}

	return form, nil
}

func (f *contentForm) decodeFields(r *http.Request) error {
	text := func(key string) catalog.Optional[string] {
		v := strings.TrimSpace(r.PostForm.Get(key))
		if v == "" {
			return catalog.None[string]()
		}
		return catalog.Some(v)
	}

	f.Fields.Title = text("title")
	f.Fields.Category = text("category")
	f.Fields.Description = text("description")
	f.Fields.Tags = text("tags")

	if v, ok := text("status").Get(); ok {
		f.Fields.Status = catalog.Some(catalog.ContentStatus(strings.ToLower(v)))
	}
	if v, ok := text("visibility").Get(); ok {
		f.Fields.Visibility = catalog.Some(catalog.Visibility(strings.ToLower(v)))
	}

	if v, ok := text("publishDate").Get(); ok {
		date, err := parseDate(v)
		if err != nil {
			return badRequest("publishDate", err)
		}
		f.Fields.PublishDate = catalog.Some(date)
	}

	for key, dst := range map[string]*catalog.Optional[int]{
		"releaseYear": &f.Fields.ReleaseYear,
		"duration":    &f.Fields.Duration,
	} {
		if v, ok := text(key).Get(); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return badRequest(key, fmt.Errorf("%q is not a whole number", v))
			}
			*dst = catalog.Some(n)
		}
	}
	return nil
}

func (f *contentForm) openFile(slot catalog.MediaSlot) (*catalog.FilePayload, error) {
	if f.form == nil {
		return nil, nil
	}
	headers := f.form.File[string(slot)]
	if len(headers) == 0 {
		return nil, nil
	}
	header := headers[0]

	file, err := header.Open()
	if err != nil {
		return nil, badRequest(string(slot), err)
	}
	f.files = append(f.files, file)

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
			mimeType = byExt
		}
	}

	return &catalog.FilePayload{
		FileName: header.Filename,
		MimeType: mimeType,
		Size:     header.Size,
		Reader:   file,
	}, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseDate(v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a date (want RFC 3339 or YYYY-MM-DD)", v)
}
