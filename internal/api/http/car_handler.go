package http

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/service"
)

// maxMultipartMemory bounds what ParseMultipartForm keeps in memory; larger
// parts spill to temp files.
const maxMultipartMemory = 32 << 20

type CarHandler struct {
	carSvc    service.CarService
	reviewSvc service.ReviewService
	validate  *Validator
}

func NewCarHandler(carSvc service.CarService, reviewSvc service.ReviewService, v *Validator) *CarHandler {
	return &CarHandler{carSvc: carSvc, reviewSvc: reviewSvc, validate: v}
}

func carFilterFromQuery(r *http.Request) (domain.CarFilter, error) {
	q := r.URL.Query()
	filter := domain.CarFilter{
		Category:     q.Get("category"),
		Transmission: q.Get("transmission"),
		FuelType:     q.Get("fuel_type"),
		Search:       strings.TrimSpace(q.Get("search")),
	}
	for name, dst := range map[string]*domain.Money{"min_price": &filter.MinPrice, "max_price": &filter.MaxPrice} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		if err := dst.UnmarshalJSON([]byte(raw)); err != nil {
			return filter, domain.BadRequest("invalid %s %q", name, raw)
		}
	}
	return filter, nil
}

func (h *CarHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := carFilterFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cars, err := h.carSvc.ListCars(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

func (h *CarHandler) Featured(w http.ResponseWriter, r *http.Request) {
	cars, err := h.carSvc.Featured(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

func (h *CarHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	car, err := h.carSvc.GetCar(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (h *CarHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	reviews, err := h.reviewSvc.ListForCar(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *CarHandler) Rating(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	avg, err := h.reviewSvc.CarAverageRating(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ratingResponse{CarID: id, AverageRating: avg})
}

func (h *CarHandler) Mine(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cars, err := h.carSvc.ListByAgent(r.Context(), account.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

// Create accepts either a JSON body or a multipart form with the listing as
// JSON in the "car" field and up to five files in "images".
func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var (
		req    carRequest
		images []domain.Upload
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			writeError(w, r, domain.BadRequest("invalid multipart form: %v", err))
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("car")), &req); err != nil {
			writeError(w, r, domain.BadRequest("car field must hold the listing as JSON: %v", err))
			return
		}
		if err := h.validate.Validate(&req); err != nil {
			writeError(w, r, err)
			return
		}
		images, err = readUploads(r.MultipartForm.File["images"])
		if err != nil {
			writeError(w, r, err)
			return
		}
	} else if err := h.validate.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	car, err := h.carSvc.AddCar(r.Context(), account.ID, req.toCar(), images)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, car)
}

func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var update domain.CarUpdate
	if err := h.validate.decode(r, &update); err != nil {
		writeError(w, r, err)
		return
	}
	car, err := h.carSvc.UpdateCar(r.Context(), account.ID, id, update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (h *CarHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req availabilityRequest
	if err := h.validate.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	car, err := h.carSvc.SetAvailability(r.Context(), account.ID, id, *req.IsAvailable)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	account, err := mustAccount(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.carSvc.DeleteCar(r.Context(), account.ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "Car deleted successfully")
}

// readUploads loads multipart files into memory. Size limits are enforced by
// the services.
func readUploads(headers []*multipart.FileHeader) ([]domain.Upload, error) {
	uploads := make([]domain.Upload, 0, len(headers))
	for _, fh := range headers {
		up, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, up)
	}
	return uploads, nil
}

func readUpload(fh *multipart.FileHeader) (domain.Upload, error) {
	if fh.Size > domain.MaxDocumentSize {
		return domain.Upload{}, domain.BadRequest("file %s exceeds the 5MB limit", fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, domain.BadRequest("cannot read file %s", fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, domain.MaxDocumentSize+1))
	if err != nil {
		return domain.Upload{}, domain.BadRequest("cannot read file %s", fh.Filename)
	}
	return domain.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}
