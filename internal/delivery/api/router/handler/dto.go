package handler

import (
	"time"

	"booklib/internal/domain/entity"
	"booklib/internal/usecase"
)

// dateLayout is the wire format of dates of birth.
const dateLayout = time.DateOnly

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=5,max=25"`
	Email           string `json:"email" validate:"required,min=6,max=32,email"`
	Password        string `json:"password" validate:"required,min=6,max=32"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is the body of PATCH /users/profile. Absent fields are left untouched.
type UpdateProfileRequest struct {
	FirstName      *string `json:"first_name" validate:"omitempty,max=50"`
	LastName       *string `json:"last_name" validate:"omitempty,max=50"`
	DateOfBirth    *string `json:"date_of_birth" validate:"omitempty"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,url,max=2048"`
	Password       *string `json:"password" validate:"omitempty,max=32"`
}

// SearchRequest holds the query parameters of GET /books.
type SearchRequest struct {
	Query string `query:"q" json:"q" validate:"required,max=256"`
	By    string `query:"by" json:"by" validate:"omitempty,oneof=title author category isbn"`
}

// TokenResponse is returned by register, login and refresh.
type TokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         *UserResponse `json:"user,omitempty"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	DateOfBirth    *string `json:"date_of_birth"`
	ProfilePicture *string `json:"profile_picture"`
}

// FavoriteBookResponse is one entry of the favorites list.
type FavoriteBookResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// BookResponse is the provider metadata of a book.
type BookResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Description   string   `json:"description,omitempty"`
	ISBN10        string   `json:"isbn_10,omitempty"`
	ISBN13        string   `json:"isbn_13,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
}

// BookDetailResponse is returned by GET /books/:id.
type BookDetailResponse struct {
	Book      *BookResponse `json:"book"`
	Favorited bool          `json:"favorited"`
}

func toUserResponse(user *entity.User) *UserResponse {
	if user == nil {
		return nil
	}

	resp := &UserResponse{
		ID:             user.ID.String(),
		Username:       user.Username,
		Email:          user.Email,
		Role:           user.Role.String(),
		FirstName:      user.Profile.FirstName,
		LastName:       user.Profile.LastName,
		ProfilePicture: user.Profile.ProfilePicture,
	}
	if user.Profile.DateOfBirth != nil {
		dob := user.Profile.DateOfBirth.Format(dateLayout)
		resp.DateOfBirth = &dob
	}

	return resp
}

func toTokenResponse(out *usecase.AuthOutput) *TokenResponse {
	return &TokenResponse{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		User:         toUserResponse(out.User),
	}
}

func toBookResponse(book *entity.BookSummary) *BookResponse {
	return &BookResponse{
		ID:            book.ID,
		Title:         book.Title,
		Authors:       book.Authors,
		Publisher:     book.Publisher,
		PublishedDate: book.PublishedDate,
		Description:   book.Description,
		ISBN10:        book.ISBN10,
		ISBN13:        book.ISBN13,
		PageCount:     book.PageCount,
		Categories:    book.Categories,
		Thumbnail:     book.Thumbnail,
	}
}
