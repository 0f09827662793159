package plex

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mydehq/plextitler/internal/catalog"
	"github.com/mydehq/plextitler/internal/types"
)

// Server is a direct connection to one media server.
type Server struct {
	http  *http.Client
	base  string
	token string
	name  string
}

func newServer(baseURL, token string) *Server {
	return &Server{
		http:  &http.Client{Timeout: requestTimeout},
		base:  strings.TrimRight(baseURL, "/"),
		token: token,
	}
}

// Direct connects to a server by URL and token, bypassing the account
// API entirely.
func Direct(ctx context.Context, baseURL, token string) (catalog.Server, error) {
	srv := newServer(baseURL, token)
	if err := srv.ping(ctx); err != nil {
		return nil, err
	}
	return srv, nil
}

func (s *Server) Name() string { return s.name }

// ping verifies the server answers and picks up its friendly name.
func (s *Server) ping(ctx context.Context) error {
	var ident struct {
		MediaContainer struct {
			FriendlyName string `json:"friendlyName"`
		} `json:"MediaContainer"`
	}
	if err := s.get(ctx, "/identity", &ident); err != nil {
		return err
	}
	if ident.MediaContainer.FriendlyName != "" {
		s.name = ident.MediaContainer.FriendlyName
	}
	return nil
}

// Libraries lists the server's library sections in server order.
func (s *Server) Libraries(ctx context.Context) ([]catalog.Library, error) {
	var sections struct {
		MediaContainer struct {
			Directory []struct {
				Key      string `json:"key"`
				Title    string `json:"title"`
				Type     string `json:"type"`
				Location []struct {
					Path string `json:"path"`
				} `json:"Location"`
			} `json:"Directory"`
		} `json:"MediaContainer"`
	}
	if err := s.get(ctx, "/library/sections", &sections); err != nil {
		return nil, err
	}

	libs := make([]catalog.Library, 0, len(sections.MediaContainer.Directory))
	for _, d := range sections.MediaContainer.Directory {
		locations := make([]string, 0, len(d.Location))
		for _, l := range d.Location {
			locations = append(locations, l.Path)
		}
		libs = append(libs, &Library{
			server:    s,
			key:       d.Key,
			title:     d.Title,
			kind:      d.Type,
			locations: locations,
		})
	}
	return libs, nil
}

// Library is one section of a server's catalog.
type Library struct {
	server    *Server
	key       string
	title     string
	kind      string
	locations []string
}

func (l *Library) Title() string       { return l.title }
func (l *Library) Type() string        { return l.kind }
func (l *Library) Locations() []string { return l.locations }

// itemMetadata is the per-item slice of the listing response this tool
// consumes: the title, the backing file parts, and per-field locks.
type itemMetadata struct {
	RatingKey string `json:"ratingKey"`
	Title     string `json:"title"`
	Media     []struct {
		Part []struct {
			File string `json:"file"`
		} `json:"Part"`
	} `json:"Media"`
	Field []struct {
		Name   string `json:"name"`
		Locked bool   `json:"locked"`
	} `json:"Field"`
}

// Items lists every item in the section, in the order the server
// returns them.
func (l *Library) Items(ctx context.Context) ([]catalog.Item, error) {
	var all struct {
		MediaContainer struct {
			Metadata []itemMetadata `json:"Metadata"`
		} `json:"MediaContainer"`
	}
	path := "/library/sections/" + url.PathEscape(l.key) + "/all"
	if err := l.server.get(ctx, path, &all); err != nil {
		return nil, err
	}

	items := make([]catalog.Item, len(all.MediaContainer.Metadata))
	for i, meta := range all.MediaContainer.Metadata {
		items[i] = &Item{server: l.server, meta: meta}
	}
	return items, nil
}

// Item is a single catalog entry. It implements the PartLister,
// FieldLocks, and TitleEditor capabilities.
type Item struct {
	server *Server
	meta   itemMetadata
}

func (i *Item) Title() string { return i.meta.Title }

func (i *Item) FilePaths() []string {
	var paths []string
	for _, m := range i.meta.Media {
		for _, p := range m.Part {
			if p.File != "" {
				paths = append(paths, p.File)
			}
		}
	}
	return paths
}

func (i *Item) FieldLocked(name string) bool {
	for _, f := range i.meta.Field {
		if f.Name == name && f.Locked {
			return true
		}
	}
	return false
}

// SetTitle writes the new title back without locking the field, so
// later runs may regenerate it.
func (i *Item) SetTitle(ctx context.Context, title string) error {
	q := url.Values{}
	q.Set("title.value", title)
	q.Set("title.locked", "0")
	return i.server.put(ctx, "/library/metadata/"+url.PathEscape(i.meta.RatingKey)+"?"+q.Encode())
}

func (s *Server) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+path, nil)
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *Server) put(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.base+path, nil)
	if err != nil {
		return err
	}
	return s.do(req, nil)
}

func (s *Server) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Product", product)
	req.Header.Set("X-Plex-Client-Identifier", clientIdentifier)
	if s.token != "" {
		req.Header.Set("X-Plex-Token", s.token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return &catalog.AuthError{Message: "server rejected token"}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return types.ErrAPIError{
			Service:    "plex",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
