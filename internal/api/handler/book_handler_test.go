package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

// stubBookService implements ports.BookService; unset funcs fail the test.
type stubBookService struct {
	t             *testing.T
	listPublicFn  func(ctx context.Context, in ports.ListBooksInput) (*ports.BookPage, error)
	getFn         func(ctx context.Context, p *domain.Principal, id int64) (*ports.BookView, error)
	createFn      func(ctx context.Context, p *domain.Principal, in ports.BookInput) (*ports.BookView, error)
	updateFn      func(ctx context.Context, p *domain.Principal, id int64, in ports.BookInput) (*ports.BookView, error)
	attachImageFn func(ctx context.Context, p *domain.Principal, id int64, up ports.ImageUpload) (*ports.BookView, error)
}

func (s *stubBookService) ListPublic(ctx context.Context, in ports.ListBooksInput) (*ports.BookPage, error) {
	return s.listPublicFn(ctx, in)
}

func (s *stubBookService) Get(ctx context.Context, p *domain.Principal, id int64) (*ports.BookView, error) {
	return s.getFn(ctx, p, id)
}

func (s *stubBookService) ListMine(context.Context, *domain.Principal) ([]ports.BookView, error) {
	s.t.Fatal("unexpected ListMine")
	return nil, nil
}

func (s *stubBookService) ListAll(context.Context, *domain.Principal) ([]ports.BookView, error) {
	s.t.Fatal("unexpected ListAll")
	return nil, nil
}

func (s *stubBookService) Create(ctx context.Context, p *domain.Principal, in ports.BookInput) (*ports.BookView, error) {
	return s.createFn(ctx, p, in)
}

func (s *stubBookService) Update(ctx context.Context, p *domain.Principal, id int64, in ports.BookInput) (*ports.BookView, error) {
	return s.updateFn(ctx, p, id, in)
}

func (s *stubBookService) Delete(context.Context, *domain.Principal, int64) error {
	s.t.Fatal("unexpected Delete")
	return nil
}

func (s *stubBookService) AttachImage(ctx context.Context, p *domain.Principal, id int64, up ports.ImageUpload) (*ports.BookView, error) {
	return s.attachImageFn(ctx, p, id, up)
}

func (s *stubBookService) RemoveImage(context.Context, *domain.Principal, int64) (*ports.BookView, error) {
	s.t.Fatal("unexpected RemoveImage")
	return nil, nil
}

func duneView() *ports.BookView {
	owner := int64(5)
	return &ports.BookView{
		Book: domain.Book{
			ID:           3,
			OwnerID:      &owner,
			Title:        "Dune",
			AuthorName:   "Frank Herbert",
			Language:     "English",
			Condition:    domain.ConditionGood,
			ExchangeType: domain.Giveaway,
			Status:       domain.StatusAvailable,
		},
		OwnerUsername: "alice_reads",
	}
}

func TestBookHandler_List_BindsQuery(t *testing.T) {
	e := newTestEcho()
	stub := &stubBookService{t: t,
		listPublicFn: func(_ context.Context, in ports.ListBooksInput) (*ports.BookPage, error) {
			if in.Condition != domain.ConditionGood || in.ExchangeType != domain.Giveaway ||
				in.Language != "english" || in.Search != "dune" || in.Page != 2 || in.Limit != 5 {
				t.Fatalf("unexpected input %+v", in)
			}
			return &ports.BookPage{Items: []ports.BookView{*duneView()}, Total: 6, Page: 2, Limit: 5, TotalPages: 2}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet,
		"/books?condition=GOOD&exchangeType=GIVEAWAY&language=english&search=dune&page=2&limit=5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := NewBookHandler(stub, 1024).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp bookPageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Total != 6 || len(resp.Items) != 1 || resp.Items[0].OwnerUsername != "alice_reads" {
		t.Fatalf("unexpected page %+v", resp)
	}
}

func TestBookHandler_List_RejectsUnknownCondition(t *testing.T) {
	e := newTestEcho()
	stub := &stubBookService{t: t}
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/books?condition=MINT", nil), httptest.NewRecorder())

	err := NewBookHandler(stub, 1024).List(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBookHandler_Get_InvalidID(t *testing.T) {
	e := newTestEcho()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/books/abc", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")

	if err := NewBookHandler(&stubBookService{t: t}, 1024).Get(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestBookHandler_Get_PassesAnonymousPrincipal(t *testing.T) {
	e := newTestEcho()
	stub := &stubBookService{t: t,
		getFn: func(_ context.Context, p *domain.Principal, id int64) (*ports.BookView, error) {
			if p != nil {
				t.Fatalf("expected anonymous caller, got %+v", p)
			}
			if id != 3 {
				t.Fatalf("unexpected id %d", id)
			}
			return nil, domain.ErrBookNotFound
		},
	}
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/books/3", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := NewBookHandler(stub, 1024).Get(c); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

func TestBookHandler_Create(t *testing.T) {
	e := newTestEcho()
	stub := &stubBookService{t: t,
		createFn: func(_ context.Context, _ *domain.Principal, in ports.BookInput) (*ports.BookView, error) {
			if in.Title != "Dune" || in.Condition != domain.ConditionGood || in.ExchangeType != domain.Giveaway {
				t.Fatalf("unexpected input %+v", in)
			}
			return duneView(), nil
		},
	}
	c, rec := jsonContext(e, http.MethodPost, "/books",
		`{"title":"Dune","authorName":"Frank Herbert","language":"English","condition":"GOOD","exchangeType":"GIVEAWAY"}`)

	if err := NewBookHandler(stub, 1024).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestBookHandler_Update_RejectsUnknownStatus(t *testing.T) {
	e := newTestEcho()
	c, _ := jsonContext(e, http.MethodPut, "/books/3",
		`{"title":"Dune","authorName":"Frank Herbert","language":"English","condition":"GOOD","exchangeType":"GIVEAWAY","status":"SOLD"}`)
	c.SetParamNames("id")
	c.SetParamValues("3")

	err := NewBookHandler(&stubBookService{t: t}, 1024).Update(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func multipartImage(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="cover.png"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestBookHandler_UploadImage(t *testing.T) {
	e := newTestEcho()
	png := []byte("\x89PNG\r\n\x1a\nfake")
	stub := &stubBookService{t: t,
		attachImageFn: func(_ context.Context, _ *domain.Principal, id int64, up ports.ImageUpload) (*ports.BookView, error) {
			if id != 3 || up.ContentType != "image/png" || up.Size != int64(len(png)) || up.Filename != "cover.png" {
				t.Fatalf("unexpected upload %+v", up)
			}
			got, err := io.ReadAll(up.Body)
			if err != nil || !bytes.Equal(got, png) {
				t.Fatalf("unexpected body %q (%v)", got, err)
			}
			v := duneView()
			v.Book.ImageURL = "http://localhost:9000/book-images/books/x.png"
			return v, nil
		},
	}
	body, ct := multipartImage(t, "image/png", png)
	req := httptest.NewRequest(http.MethodPost, "/books/3/image", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := NewBookHandler(stub, 1024).UploadImage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp bookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ImageURL == "" {
		t.Fatal("expected image url")
	}
}

func TestBookHandler_UploadImage_TooLarge(t *testing.T) {
	e := newTestEcho()
	body, ct := multipartImage(t, "image/png", bytes.Repeat([]byte("x"), 64))
	req := httptest.NewRequest(http.MethodPost, "/books/3/image", body)
	req.Header.Set(echo.HeaderContentType, ct)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("3")

	err := NewBookHandler(&stubBookService{t: t}, 16).UploadImage(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %v", err)
	}
}

func TestBookHandler_UploadImage_MissingFile(t *testing.T) {
	e := newTestEcho()
	c, _ := jsonContext(e, http.MethodPost, "/books/3/image", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := NewBookHandler(&stubBookService{t: t}, 1024).UploadImage(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
