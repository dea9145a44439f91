package http

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
	"github.com/sm8ta/webike_rental_service/internal/core/services"
)

type BikeHandler struct {
	bikeService *services.BikeService
	logger      ports.LoggerPort
	metrics     ports.MetricsPort
}

type bikeData struct {
	Bike *domain.Bike `json:"bike"`
}

type bikesData struct {
	Bikes []*domain.Bike `json:"bikes"`
}

type citiesData struct {
	Cities []string `json:"cities"`
}

func NewBikeHandler(
	bikeService *services.BikeService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *BikeHandler {
	return &BikeHandler{
		bikeService: bikeService,
		logger:      logger,
		metrics:     metrics,
	}
}

// @Summary List bikes
// @Description Lists every bike, or the bikes serving a city
// @Tags bikes
// @Produce json
// @Param city query string false "City name" example:"Dehradun"
// @Success 200 {object} successResponse
// @Failure 500 {object} errorResponse
// @Router /api/bikes [get]
func (h *BikeHandler) ListBikes(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikes, err := h.bikeService.ListBikes(c.Request.Context(), strings.TrimSpace(c.Query("city")))
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to list bikes")
		return
	}

	newListResponse(c, len(bikes), bikesData{Bikes: bikes})
}

// @Summary List cities
// @Description Distinct cities served by at least one bike, sorted
// @Tags bikes
// @Produce json
// @Success 200 {object} successResponse
// @Router /api/bikes/cities [get]
func (h *BikeHandler) ListCities(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	cities, err := h.bikeService.ListCities(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to list cities")
		return
	}

	newListResponse(c, len(cities), citiesData{Cities: cities})
}

// @Summary Get a bike
// @Description Returns a bike with the owner's contact and payment details
// @Tags bikes
// @Produce json
// @Param id path string true "Bike ID"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/bikes/{id} [get]
func (h *BikeHandler) GetBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bike, err := h.bikeService.GetBikeByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to get bike")
		return
	}

	newSuccessResponse(c, http.StatusOK, bikeData{Bike: bike})
}

// @Summary Bikes of an owner
// @Tags bikes
// @Produce json
// @Param ownerId path string true "Owner ID"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Router /api/bikes/owner/{ownerId} [get]
func (h *BikeHandler) GetOwnerBikes(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikes, err := h.bikeService.GetBikesByOwnerID(c.Request.Context(), c.Param("ownerId"))
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to get owner bikes")
		return
	}

	newListResponse(c, len(bikes), bikesData{Bikes: bikes})
}

// @Summary Create a bike
// @Description Creates a listing for the authenticated owner
// @Tags bikes
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Bike image (jpg, jpeg, png, gif, webp)"
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param price formData integer true "Price per day"
// @Param city formData []string true "City names, repeated or comma separated" collectionFormat(multi)
// @Param address formData string true "Shop address"
// @Param pincode formData string true "Shop pincode"
// @Param specifications formData string false "JSON object with brand, model, year, engineCC, mileage"
// @Success 201 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Router /api/bikes [post]
func (h *BikeHandler) CreateBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		h.logger.Warn("Unauthorized access attempt to CreateBike", map[string]interface{}{
			"ip": c.ClientIP(),
		})
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	image, err := formImage(c)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid image upload")
		return
	}

	update, err := bikeForm(c)
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to parse bike form")
		return
	}
	if update.Cities == nil {
		newErrorResponse(c, http.StatusBadRequest, "Please provide the city")
		return
	}

	bike := &domain.Bike{}
	update.Available = nil
	update.Apply(bike)

	createdBike, err := h.bikeService.CreateBike(c.Request.Context(), payload.UserID, bike, image)
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to create bike")
		return
	}

	newSuccessResponse(c, http.StatusCreated, bikeData{Bike: createdBike})
}

// @Summary Update a bike
// @Description Partially updates a listing owned by the caller. A new image replaces the stored one.
// @Tags bikes
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Bike ID"
// @Param image formData file false "Replacement image"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param price formData integer false "Price per day"
// @Param city formData []string false "City names" collectionFormat(multi)
// @Param available formData boolean false "Availability flag"
// @Param address formData string false "Shop address"
// @Param pincode formData string false "Shop pincode"
// @Param specifications formData string false "JSON object with brand, model, year, engineCC, mileage"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/bikes/{id} [put]
func (h *BikeHandler) UpdateBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID := c.Param("id")

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		h.logger.Warn("Unauthorized access attempt to UpdateBike", map[string]interface{}{
			"bike_id": bikeID,
			"ip":      c.ClientIP(),
		})
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	image, err := formImage(c)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid image upload")
		return
	}

	update, err := bikeForm(c)
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to parse bike form")
		return
	}

	updatedBike, err := h.bikeService.UpdateBike(c.Request.Context(), payload.UserID, bikeID, update, image)
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to update bike")
		return
	}

	newSuccessResponse(c, http.StatusOK, bikeData{Bike: updatedBike})
}

// @Summary Delete a bike
// @Tags bikes
// @Security BearerAuth
// @Param id path string true "Bike ID"
// @Success 204 "Deleted"
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/bikes/{id} [delete]
func (h *BikeHandler) DeleteBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID := c.Param("id")

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.bikeService.DeleteBike(c.Request.Context(), payload.UserID, bikeID); err != nil {
		handleServiceError(c, h.logger, err, "Failed to delete bike")
		return
	}

	c.Status(http.StatusNoContent)
}

// formImage returns the optional "image" file. A missing file is not an error.
func formImage(c *gin.Context) (*multipart.FileHeader, error) {
	file, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	return file, err
}

// bikeForm reads the listing fields present in the request form.
func bikeForm(c *gin.Context) (*domain.BikeUpdate, error) {
	update := &domain.BikeUpdate{}

	if v, ok := c.GetPostForm("title"); ok {
		v = strings.TrimSpace(v)
		update.Title = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		update.Description = &v
	}
	if v, ok := c.GetPostForm("price"); ok {
		price, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, domain.NewError(domain.ErrValidation, "Price must be a whole number")
		}
		update.Price = &price
	}
	if v, ok := c.GetPostForm("available"); ok {
		available, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, domain.NewError(domain.ErrValidation, "Available must be true or false")
		}
		update.Available = &available
	}
	if v, ok := c.GetPostForm("address"); ok {
		update.Address = &v
	}
	if v, ok := c.GetPostForm("pincode"); ok {
		v = strings.TrimSpace(v)
		update.Pincode = &v
	}

	var cityValues []string
	cityValues = append(cityValues, c.PostFormArray("city")...)
	cityValues = append(cityValues, c.PostFormArray("city[]")...)
	if len(cityValues) > 0 {
		cities, err := domain.ParseCities(cityValues)
		if err != nil {
			return nil, err
		}
		update.Cities = cities
	}

	specs, err := specificationsForm(c)
	if err != nil {
		return nil, err
	}
	update.Specifications = specs

	return update, nil
}

// specificationsForm accepts either a JSON object in "specifications" or bracketed fields like specifications[brand].
func specificationsForm(c *gin.Context) (*domain.Specifications, error) {
	if raw, ok := c.GetPostForm("specifications"); ok && strings.TrimSpace(raw) != "" {
		specs := &domain.Specifications{}
		if err := json.Unmarshal([]byte(raw), specs); err != nil {
			return nil, domain.NewError(domain.ErrValidation, "Specifications must be a JSON object")
		}
		return specs, nil
	}

	fields, ok := c.GetPostFormMap("specifications")
	if !ok {
		return nil, nil
	}

	specs := &domain.Specifications{
		Brand: strings.TrimSpace(fields["brand"]),
		Model: strings.TrimSpace(fields["model"]),
	}
	for key, dst := range map[string]*int{"year": &specs.Year, "engineCC": &specs.EngineCC, "mileage": &specs.Mileage} {
		v := strings.TrimSpace(fields[key])
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, domain.NewError(domain.ErrValidation, "Specification "+key+" must be a number")
		}
		*dst = n
	}
	return specs, nil
}
