package rest

import (
	"net/url"
	"strconv"
	"strings"

	"arkive/internal/httputil"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	API         *httputil.Client // auth, users, departments, folders, documents
	Gateway     *httputil.Client // file storage
	Translation *httputil.Client
}

// idPath builds "<resource>/<id>"
func idPath(resource string, id int64) string {
	return resource + "/" + strconv.FormatInt(id, 10)
}

// namePath builds "<resource>/<escaped name>"
func namePath(resource, name string) string {
	return resource + "/" + url.PathEscape(name)
}

// departmentsQuery encodes departments as repeated query parameters,
// the form Spring binds to a List<String>.
func departmentsQuery(departments []string) url.Values {
	q := url.Values{}
	for _, d := range departments {
		if d = strings.TrimSpace(d); d != "" {
			q.Add("departments", d)
		}
	}
	return q
}
