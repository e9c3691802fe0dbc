package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/debemdeboas/folio/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBlog() *model.BlogDraft {
	return &model.BlogDraft{
		Title:      "Hello World",
		Type:       model.BlogTypeTechnical,
		Categories: []string{"Web Dev"},
		Tags:       []string{"x"},
		CoverImage: "https://img/x.png",
		ContentDetails: model.ContentDetails{
			Paragraphs: []string{"p1"},
			KeyPoints:  []string{"k1"},
		},
		Sections: []model.Section{},
	}
}

func validProject() *model.ProjectDraft {
	start := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	return &model.ProjectDraft{
		Type:             model.ProjectTypeProfessional,
		CompanyName:      "Acme",
		Category:         []string{"Full Stack"},
		ShortDescription: "A storefront for widgets",
		TechStack:        []string{"React", "Node.js"},
		StartDate:        &start,
		CompanyLogoImg:   "https://img/logo.png",
		DescriptionDetails: model.DescriptionDetails{
			Paragraphs: []string{"Built the checkout flow end to end."},
		},
		PagesInfoArr: []model.PageInfo{
			{Title: "Home", ImgArr: []string{"https://img/home.png"}},
		},
	}
}

func TestNew(t *testing.T) {
	v := New()
	assert.NotNil(t, v)
	assert.NotNil(t, v.validator)
}

func TestBlog(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *model.BlogDraft)
		want   map[string]string
	}{
		{
			name:   "complete draft passes",
			mutate: func(d *model.BlogDraft) {},
		},
		{
			name:   "short title",
			mutate: func(d *model.BlogDraft) { d.Title = "Hey" },
			want:   map[string]string{"title": "Title must be at least 5 characters."},
		},
		{
			name:   "zero categories",
			mutate: func(d *model.BlogDraft) { d.Categories = nil },
			want:   map[string]string{"categories": "Select at least one category."},
		},
		{
			name:   "unknown category",
			mutate: func(d *model.BlogDraft) { d.Categories = []string{"Web Dev", "Cooking"} },
			want:   map[string]string{"categories[1]": "Unknown category."},
		},
		{
			name:   "unknown type",
			mutate: func(d *model.BlogDraft) { d.Type = "Rant" },
			want:   map[string]string{"type": "Select a blog type."},
		},
		{
			name:   "missing cover image",
			mutate: func(d *model.BlogDraft) { d.CoverImage = "" },
			want:   map[string]string{"coverImage": "Please upload a valid image URL."},
		},
		{
			name:   "no paragraphs or key points",
			mutate: func(d *model.BlogDraft) { d.ContentDetails = model.ContentDetails{} },
			want: map[string]string{
				"contentDetails.paragraphs": "Add at least one paragraph.",
				"contentDetails.keyPoints":  "Add at least one key point.",
			},
		},
		{
			name: "nested subsection title",
			mutate: func(d *model.BlogDraft) {
				d.Sections = []model.Section{
					model.NewSection(),
					model.NewSection(),
					{Title: "third", Subsections: []model.Subsection{{Text: "no title"}}},
				}
			},
			want: map[string]string{"sections[2].subsections[0].title": "Subsection title is required."},
		},
		{
			name:   "bad repository url",
			mutate: func(d *model.BlogDraft) { d.RepositoryURL = "not a url" },
			want:   map[string]string{"repositoryUrl": "Please enter a valid repository URL."},
		},
		{
			name:   "bad external link",
			mutate: func(d *model.BlogDraft) { d.ExternalLinks = []model.ExternalLink{{Label: "docs", URL: "docs"}} },
			want:   map[string]string{"externalLinks[0].url": "Please enter a valid URL."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validBlog()
			tt.mutate(d)

			errs := Blog(d)
			if tt.want == nil {
				assert.True(t, errs.Valid(), "unexpected errors: %v", errs)
				return
			}
			assert.Equal(t, Errors(tt.want), errs)
		})
	}
}

func TestBlogZeroCategoriesAlwaysFails(t *testing.T) {
	drafts := []*model.BlogDraft{validBlog(), model.NewBlogDraft(), {}}
	for _, d := range drafts {
		d.Categories = []string{}
		errs := Blog(d)
		assert.Contains(t, errs, "categories")
	}
}

func TestProject(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *model.ProjectDraft)
		want   map[string]string
	}{
		{
			name:   "complete draft passes",
			mutate: func(d *model.ProjectDraft) {},
		},
		{
			name:   "optional links may be empty",
			mutate: func(d *model.ProjectDraft) { d.WebsiteLink, d.GithubLink = "", "" },
		},
		{
			name:   "missing start date",
			mutate: func(d *model.ProjectDraft) { d.StartDate = nil },
			want:   map[string]string{"startDate": "A start date is required."},
		},
		{
			name:   "unknown tech",
			mutate: func(d *model.ProjectDraft) { d.TechStack = []string{"Vue"} },
			want:   map[string]string{"techStack[0]": "Unknown technology."},
		},
		{
			name:   "short paragraph",
			mutate: func(d *model.ProjectDraft) { d.DescriptionDetails.Paragraphs = []string{"too short"} },
			want:   map[string]string{"descriptionDetails.paragraphs[0]": "Paragraph must be at least 10 characters."},
		},
		{
			name:   "short bullet",
			mutate: func(d *model.ProjectDraft) { d.DescriptionDetails.Bullets = []string{"ok!"} },
			want:   map[string]string{"descriptionDetails.bullets[0]": "Bullet point must be at least 5 characters."},
		},
		{
			name:   "empty image slot",
			mutate: func(d *model.ProjectDraft) { d.PagesInfoArr[0].ImgArr = []string{"https://img/a.png", ""} },
			want:   map[string]string{"pagesInfoArr[0].imgArr[1]": "Please upload a valid image."},
		},
		{
			name:   "no pages",
			mutate: func(d *model.ProjectDraft) { d.PagesInfoArr = nil },
			want:   map[string]string{"pagesInfoArr": "Please add at least one page info."},
		},
		{
			name:   "bad website",
			mutate: func(d *model.ProjectDraft) { d.WebsiteLink = "acme" },
			want:   map[string]string{"websiteLink": "Please enter a valid website URL."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validProject()
			tt.mutate(d)

			errs := Project(d)
			if tt.want == nil {
				assert.True(t, errs.Valid(), "unexpected errors: %v", errs)
				return
			}
			assert.Equal(t, Errors(tt.want), errs)
		})
	}
}

func TestNewProjectDraftFails(t *testing.T) {
	errs := Project(model.NewProjectDraft())
	require.False(t, errs.Valid())

	for _, path := range []string{
		"companyName", "category", "shortDescription", "techStack", "startDate",
		"companyLogoImg", "descriptionDetails.paragraphs[0]", "pagesInfoArr[0].title",
		"pagesInfoArr[0].imgArr[0]",
	} {
		assert.Contains(t, errs, path)
	}
}

func TestScalarForms(t *testing.T) {
	t.Run("skill", func(t *testing.T) {
		ok := model.Skill{Name: "Go", Description: "Concurrent services", Rating: 5, Icon: "go"}
		assert.True(t, Struct(ok).Valid())

		bad := model.Skill{Name: "G", Description: "short", Rating: 6}
		errs := Struct(bad)
		assert.Equal(t, "Skill name must be at least 2 characters.", errs["name"])
		assert.Equal(t, "Description must be at least 10 characters.", errs["description"])
		assert.Equal(t, "Rating must be between 1 and 5.", errs["rating"])
		assert.Equal(t, "Please select an icon.", errs["icon"])
	})

	t.Run("message", func(t *testing.T) {
		ok := model.Message{Name: "Ann", Email: "ann@example.com", Message: "Let's work together"}
		assert.True(t, Struct(ok).Valid())

		bad := model.Message{Name: "Al", Email: "nope", Message: "hi", Social: "twitter"}
		errs := Struct(bad)
		assert.Len(t, errs, 4)
		assert.Equal(t, "Please write something more descriptive.", errs["message"])
	})

	t.Run("credentials", func(t *testing.T) {
		tests := []struct {
			password string
			msg      string
		}{
			{"Secret1", ""},
			{"Sec1", "Password must be at least 6 characters."},
			{"secret12", "Password must contain a lowercase letter, an uppercase letter and a number."},
			{"SECRETAB", "Password must contain a lowercase letter, an uppercase letter and a number."},
			{"Aa1" + strings.Repeat("a", 33), "Password must not exceed 32 characters."},
		}
		for _, tt := range tests {
			errs := Struct(model.Credentials{Email: "a@b.co", Password: tt.password})
			assert.Equal(t, tt.msg, errs["password"], tt.password)
		}
	})
}

func TestErrors(t *testing.T) {
	errs := Errors{"b": "second", "a": "first"}
	assert.False(t, errs.Valid())
	assert.Equal(t, []string{"a", "b"}, errs.Paths())
	assert.Equal(t, "validation failed: a: first, b: second", errs.Error())

	assert.True(t, Errors{}.Valid())
}

func TestUnvalidatableInput(t *testing.T) {
	var d *model.BlogDraft
	errs := Blog(d)
	assert.Contains(t, errs, FormKey)

	errs = Struct(42)
	assert.Contains(t, errs, FormKey)
}

func TestShape(t *testing.T) {
	assert.Equal(t, "sections[].subsections[].title", shape("sections[2].subsections[10].title"))
	assert.Equal(t, "title", shape("title"))
}
