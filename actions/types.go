package actions

import "encoding/json"

// Credential is the session token forwarded to the upstream API. The empty
// credential is sent as no cookie at all.
type Credential string

// Ref is a reference to another upstream document. The API returns either the
// bare id or the populated object, so both decode into Ref.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.ID)
	}
	type plain Ref
	return json.Unmarshal(b, (*plain)(r))
}

// Blog is a blog post as stored by the upstream API.
type Blog struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Slug      string   `json:"slug,omitempty"`
	Excerpt   string   `json:"excerpt,omitempty"`
	Content   string   `json:"content"`
	Category  Ref      `json:"category"`
	Tags      []string `json:"tags"`
	Photo     string   `json:"photo,omitempty"`
	Published bool     `json:"published"`
	CreatedAt string   `json:"createdAt,omitempty"`
	UpdatedAt string   `json:"updatedAt,omitempty"`
}

// BlogInput is the metadata sent in the "data" field when creating or updating a blog.
type BlogInput struct {
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt,omitempty"`
	Content     string   `json:"content"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags"`
	Published   bool     `json:"published"`
	DeletePhoto string   `json:"deletePhoto,omitempty"`
}

// Category is a blog category.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

// CategoryInput is the JSON body for category mutations.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Project is a portfolio project.
type Project struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Photo        string   `json:"photo,omitempty"`
	LiveURL      string   `json:"liveUrl,omitempty"`
	GithubURL    string   `json:"githubUrl,omitempty"`
	Featured     bool     `json:"featured"`
	CreatedAt    string   `json:"createdAt,omitempty"`
}

// ProjectInput is the metadata sent in the "data" field for project mutations.
type ProjectInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	LiveURL      string   `json:"liveUrl,omitempty"`
	GithubURL    string   `json:"githubUrl,omitempty"`
	Featured     bool     `json:"featured"`
	DeletePhoto  string   `json:"deletePhoto,omitempty"`
}

// User is the site owner's profile.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Bio     string `json:"bio,omitempty"`
	Photo   string `json:"photo,omitempty"`
}

// ProfileInput is the metadata sent in the "data" field for a profile update.
type ProfileInput struct {
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	Bio         string `json:"bio,omitempty"`
	DeletePhoto string `json:"deletePhoto,omitempty"`
}

// Credentials are posted to the login endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the login payload returned by the upstream API.
type Session struct {
	AccessToken string `json:"accessToken"`
}

// Upload is a file carried in a multipart request. Data is held fully in memory.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}
