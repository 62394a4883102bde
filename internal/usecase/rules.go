package usecase

import "github.com/tastelens/backend/internal/domain"

// DefaultRules is the built-in rule table used when configuration provides none
func DefaultRules() []domain.ClassificationRule {
	return []domain.ClassificationRule{
		{
			Destination: domain.CategoryDestination(domain.CategoryCode),
			Domains:     []string{"github.com", "gitlab.com", "stackoverflow.com", "stripe.com", "vercel.com", "npmjs.com", "pkg.go.dev"},
			Keywords:    []string{"api", "sdk", "library", "repository", "framework", "typescript", "golang", "react"},
		},
		{
			Destination: domain.CategoryDestination(domain.CategoryDesign),
			Domains:     []string{"dribbble.com", "behance.net", "mobbin.com", "figma.com", "land-book.com", "godly.website"},
			Keywords:    []string{"ui kit", "ux", "landing page", "dashboard", "interface", "design system"},
		},
		{
			Destination: domain.CategoryDestination(domain.CategoryTypography),
			Domains:     []string{"fonts.google.com", "typewolf.com", "klim.co.nz", "fontsinuse.com"},
			Keywords:    []string{"typeface", "font", "typography", "lettering", "serif"},
		},
		{
			Destination: domain.CategoryDestination(domain.CategoryColor),
			Domains:     []string{"coolors.co", "colorhunt.co", "adobe.com/color"},
			Keywords:    []string{"palette", "color scheme", "colour", "gradient"},
		},
		{
			Destination: domain.CategoryDestination(domain.CategoryWriting),
			Domains:     []string{"substack.com", "medium.com"},
			Keywords:    []string{"essay", "newsletter", "writing", "blog post"},
		},
		{
			Destination: domain.CategoryDestination(domain.CategoryTools),
			Domains:     []string{"producthunt.com", "raycast.com", "linear.app", "notion.so"},
			Keywords:    []string{"toolkit", "plugin", "extension", "productivity"},
		},
		{
			Destination: domain.CategoryDestination(domain.CategoryResearch),
			Domains:     []string{"arxiv.org", "scholar.google.com", "acm.org", "nngroup.com"},
			Keywords:    []string{"paper", "study", "research", "survey"},
		},
	}
}
