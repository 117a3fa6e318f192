// Package navigation builds the site header for the current visitor.
package navigation

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fertilitycare/patient-portal/internal/session"
)

const Brand = "FertilityCare"

// DashboardPath is the landing page of a role. Anonymous visitors and
// unknown roles go to the patient dashboard.
func DashboardPath(roleID string) string {
	switch roleID {
	case session.RoleAdmin:
		return "/admin/dashboard"
	case session.RoleDoctor:
		return "/doctor/dashboard"
	default:
		return "/patient/dashboard"
	}
}

type Link struct {
	Label  string `json:"label"`
	Href   string `json:"href"`
	Active bool   `json:"active,omitempty"`
}

type User struct {
	FullName      string `json:"fullName"`
	RoleID        string `json:"roleId"`
	DashboardLink Link   `json:"dashboard"`
	Logout        Link   `json:"logout"`
}

// Header is the navigation payload.
type Header struct {
	Brand    string `json:"brand"`
	Home     string `json:"home"`
	Items    []Link `json:"items"`
	User     *User  `json:"user,omitempty"`
	Login    *Link  `json:"login,omitempty"`
	Register *Link  `json:"register,omitempty"`
}

type item struct {
	label string
	href  string
	exact bool
}

var items = []item{
	{label: "Trang chủ", href: "/", exact: true},
	{label: "Dịch vụ", href: "/services"},
	{label: "Bác sĩ", href: "/doctors"},
	{label: "Blog", href: "/blog"},
	{label: "Đặt lịch", href: "/booking", exact: true},
}

// Build returns the header for path. A zero identity is an anonymous visitor.
func Build(path string, id session.Identity) Header {
	h := Header{Brand: Brand, Home: "/", Items: make([]Link, 0, len(items))}
	for _, it := range items {
		active := path == it.href
		if !it.exact {
			active = strings.Contains(path, it.href)
		}
		h.Items = append(h.Items, Link{Label: it.label, Href: it.href, Active: active})
	}

	if id.UserID == "" {
		h.Login = &Link{Label: "Đăng nhập", Href: "/login"}
		h.Register = &Link{Label: "Đăng ký ngay", Href: "/register"}
		return h
	}
	h.User = &User{
		FullName:      id.FullName,
		RoleID:        id.RoleID,
		DashboardLink: Link{Label: id.FullName, Href: DashboardPath(id.RoleID)},
		Logout:        Link{Label: "Đăng xuất", Href: "/"},
	}
	return h
}

// Handler serves GET /api/v1/navigation?path=. The session is optional.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		if path == "" {
			path = "/"
		}
		id, _ := session.FromContext(r.Context())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Build(path, id))
	}
}
