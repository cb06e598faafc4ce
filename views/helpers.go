package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/portfolio/actions"
)

// BuildURL joins path segments onto a base URL. Routes carry no trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join("/", u.Path, path.Join(pathSegments...))
	return u.String()
}

// RelatedBlogs returns blogs that share a tag or the category with current.
func RelatedBlogs(current actions.Blog, blogs []actions.Blog, max int) []actions.Blog {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		tag := strings.ToLower(strings.TrimSpace(t))
		if tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	var related []actions.Blog
	for _, b := range blogs {
		if b.ID == current.ID {
			continue
		}
		match := current.Category.ID != "" && b.Category.ID == current.Category.ID
		for _, t := range b.Tags {
			if match {
				break
			}
			_, match = tagSet[strings.ToLower(strings.TrimSpace(t))]
		}
		if match {
			related = append(related, b)
			if max > 0 && len(related) == max {
				break
			}
		}
	}
	return related
}

// FilterByCategory returns the blogs in category id; empty id returns all.
func FilterByCategory(blogs []actions.Blog, id string) []actions.Blog {
	if id == "" {
		return blogs
	}
	var out []actions.Blog
	for _, b := range blogs {
		if b.Category.ID == id {
			out = append(out, b)
		}
	}
	return out
}

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// JoinTags formats a tag slice as a comma-separated string for form fields.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// FormatDate renders an RFC 3339 or YYYY-MM-DD timestamp as "Jan 2, 2006".
// Anything else is returned unchanged.
func FormatDate(s string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return s
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalLD(data)
}

// PersonJsonLD describes the site owner.
func PersonJsonLD(cfg SiteConfig, owner actions.User, skills []string) string {
	name := owner.Name
	if name == "" {
		name = cfg.Author
	}
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "Person",
		"name":     name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Tagline != "" {
		data["jobTitle"] = cfg.Tagline
	}
	if len(skills) > 0 {
		data["knowsAbout"] = skills
	}
	return marshalLD(data)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a blog.
func BlogPostingJsonLD(cfg SiteConfig, blog actions.Blog) string {
	postURL := BuildURL(cfg.URL, "blogs", blog.ID)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      blog.Title,
		"description":   blog.Excerpt,
		"datePublished": blog.CreatedAt,
		"url":           postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if blog.UpdatedAt != "" {
		data["dateModified"] = blog.UpdatedAt
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if len(blog.Tags) > 0 {
		data["keywords"] = strings.Join(blog.Tags, ", ")
	}
	return marshalLD(data)
}

func marshalLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
