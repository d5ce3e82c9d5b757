package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"groovy/logger"
	"groovy/storage"

	"github.com/gorilla/mux"
)

var errUnsatisfiableRange = errors.New("unsatisfiable range")

// byteRange is an inclusive span of a file.
type byteRange struct {
	start, end int64
}

func (br byteRange) length() int64 {
	return br.end - br.start + 1
}

// parseRange accepts a single "bytes=start-end", "bytes=start-" or
// "bytes=-suffix" range. Anything else, including multiple ranges, is
// unsatisfiable.
func parseRange(header string, size int64) (byteRange, error) {
	spec, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok || strings.Contains(spec, ",") || size <= 0 {
		return byteRange{}, errUnsatisfiableRange
	}
	first, last, ok := strings.Cut(strings.TrimSpace(spec), "-")
	if !ok {
		return byteRange{}, errUnsatisfiableRange
	}
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)

	if first == "" {
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n <= 0 {
			return byteRange{}, errUnsatisfiableRange
		}
		if n > size {
			n = size
		}
		return byteRange{start: size - n, end: size - 1}, nil
	}

	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil || start < 0 || start >= size {
		return byteRange{}, errUnsatisfiableRange
	}
	end := size - 1
	if last != "" {
		end, err = strconv.ParseInt(last, 10, 64)
		if err != nil || end < start {
			return byteRange{}, errUnsatisfiableRange
		}
		if end > size-1 {
			end = size - 1
		}
	}
	return byteRange{start: start, end: end}, nil
}

// FileHandler 提供上传文件, 支持 Range 请求
func (h *APIHandler) FileHandler(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	f, info, err := h.files.Open(r.Context(), filename)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer f.Close()
	serveRange(w, r, f, info)
}

// serveRange writes f honouring a single byte range. The body is streamed
// from the seek position, never buffered whole.
func serveRange(w http.ResponseWriter, r *http.Request, f io.ReadSeeker, info storage.FileInfo) {
	contentType := info.ContentType
	if contentType == "" {
		contentType = storage.DetermineMediaType(info.Name)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Accept-Ranges", "bytes")
	if !info.ModTime.IsZero() {
		w.Header().Set("Last-Modified", info.ModTime.UTC().Format(http.TimeFormat))
	}

	header := r.Header.Get("Range")
	if header == "" {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			copyBody(w, f, info.Size, info.Name)
		}
		return
	}

	br, err := parseRange(header, info.Size)
	if err != nil {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", info.Size))
		writeStatus(w, r, http.StatusRequestedRangeNotSatisfiable, "Requested range not satisfiable")
		return
	}
	if _, err := f.Seek(br.start, io.SeekStart); err != nil {
		writeError(w, r, fmt.Errorf("seek %s: %w", info.Name, err))
		return
	}
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", br.start, br.end, info.Size))
	w.Header().Set("Content-Length", strconv.FormatInt(br.length(), 10))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method != http.MethodHead {
		copyBody(w, f, br.length(), info.Name)
	}
}

func copyBody(w io.Writer, f io.Reader, n int64, name string) {
	if _, err := io.CopyN(w, f, n); err != nil {
		// 客户端中途断开很常见
		logger.Debug("file transfer interrupted", logger.String("file", name), logger.ErrorField(err))
	}
}
