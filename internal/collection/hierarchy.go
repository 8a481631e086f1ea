package collection

import (
	"strings"

	"github.com/mark3labs/raml2postman/internal/spec"
)

// Build turns every resource of doc into request items and files them into
// folders. The folder chain is the path's segments without the last one, so
// /a/b/c lands in folder a/b.
func Build(doc *spec.Document, baseURL string) []*Item {
	root := []*Item{}
	if doc == nil {
		return root
	}
	for _, res := range doc.Resources {
		if !strings.HasPrefix(res.Path, "/") {
			continue
		}
		folders := folderChain(res.Path)
		for _, m := range res.Methods {
			if !spec.IsHTTPMethod(m.Name) {
				continue
			}
			item := BuildRequestItem(m.Name, res.Path, m, baseURL, res.URIParameters)
			root = Insert(root, folders, item)
		}
	}
	return root
}

func folderChain(path string) []string {
	var segments []string
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return nil
	}
	return segments[:len(segments)-1]
}

// Insert appends item under the folder chain named by segments, creating
// missing folders and reusing existing ones of the same name.
func Insert(level []*Item, segments []string, item *Item) []*Item {
	if len(segments) == 0 {
		return append(level, item)
	}
	folder := findFolder(level, segments[0])
	if folder == nil {
		folder = &Item{Name: segments[0], Items: []*Item{}}
		level = append(level, folder)
	}
	folder.Items = Insert(folder.Items, segments[1:], item)
	return level
}

func findFolder(level []*Item, name string) *Item {
	for _, it := range level {
		if it.IsFolder() && it.Name == name {
			return it
		}
	}
	return nil
}

// CountRequests reports how many request items sit in the tree.
func CountRequests(items []*Item) int {
	n := 0
	for _, it := range items {
		if it.IsFolder() {
			n += CountRequests(it.Items)
			continue
		}
		n++
	}
	return n
}
