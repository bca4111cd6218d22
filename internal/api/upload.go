package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"finderhub-backend/internal/ingest"
	"finderhub-backend/internal/model"
	"finderhub-backend/internal/tabular"
	pkgerrors "finderhub-backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// readUpload pulls the named multipart file fully into memory.
func readUpload(c *gin.Context, field string) (string, []byte, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", nil, pkgerrors.ErrInputMissing
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}
	return fileHeader.Filename, data, nil
}

// stageAndParse runs Blob Stage -> Tabular Parser -> Record Normalizer: the
// upload is stored, fetched back as one buffer, parsed and trimmed.
func (h *Handler) stageAndParse(c *gin.Context, filename string, data []byte, format tabular.Format) ([]tabular.Record, error) {
	key, err := h.blob.Store(c.Request.Context(), filename, data)
	if err != nil {
		return nil, pkgerrors.NewPersistenceError("store upload", err)
	}

	buf, err := h.blob.Retrieve(c.Request.Context(), key)
	if err != nil {
		return nil, pkgerrors.NewPersistenceError("fetch upload", err)
	}

	records, err := h.parser.Parse(buf, format)
	if err != nil {
		return nil, err
	}
	return tabular.NormalizeAll(records), nil
}

func (h *Handler) UploadStudents(c *gin.Context) {
	filename, data, err := readUpload(c, "excelFile")
	if err != nil {
		if errors.Is(err, pkgerrors.ErrInputMissing) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	records, err := h.stageAndParse(c, filename, data, tabular.FormatWorkbook)
	if err != nil {
		h.uploadError(c, err)
		return
	}

	mode := ingest.PersistPerRecord
	if h.cfg.Ingest.Atomic {
		mode = ingest.PersistConditional
	}

	result, err := ingest.Run(c.Request.Context(), records, h.students, ingest.Options{
		KeyField:       "EnrollmentCode",
		SkipMissingKey: true,
		Mode:           mode,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Student ingestion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	h.cache.Invalidate(c.Request.Context(), cacheKeyStudents)

	h.log.Info().
		Int("processed", result.Processed).
		Int("duplicates", result.Duplicates).
		Msg("Student file ingested")

	c.JSON(http.StatusOK, gin.H{
		"message":        "File processed successfully",
		"processedCount": result.Processed,
		"duplicateCount": result.Duplicates,
	})
}

func (h *Handler) UploadBuses(c *gin.Context) {
	filename, data, err := readUpload(c, "busFile")
	if err != nil {
		if errors.Is(err, pkgerrors.ErrInputMissing) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	records, err := h.stageAndParse(c, filename, data, tabular.FormatWorkbook)
	if err != nil {
		h.uploadError(c, err)
		return
	}

	mode := ingest.PersistBatch
	if h.cfg.Ingest.Atomic {
		mode = ingest.PersistConditional
	}

	result, err := ingest.Run(c.Request.Context(), records, h.buses, ingest.Options{
		KeyField: "Busno",
		Mode:     mode,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Bus ingestion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error processing file", "error": err.Error()})
		return
	}

	h.cache.Invalidate(c.Request.Context(), cacheKeyBuses)

	h.log.Info().
		Int("processed", result.Processed).
		Int("duplicates", result.Duplicates).
		Msg("Bus file ingested")

	c.JSON(http.StatusOK, gin.H{
		"message":        "File processed successfully",
		"duplicateCount": result.Duplicates,
	})
}

// UploadStops has no dedup step: the stops list is trusted, so rows are
// bound and bulk-inserted as-is. Responses are plain text.
func (h *Handler) UploadStops(c *gin.Context) {
	_, data, err := readUpload(c, "file")
	if err != nil {
		if errors.Is(err, pkgerrors.ErrInputMissing) {
			c.String(http.StatusBadRequest, "No file uploaded.")
			return
		}
		c.String(http.StatusInternalServerError, "Error saving data.")
		return
	}

	records, err := h.parser.Parse(data, tabular.FormatCSV)
	if err != nil {
		h.log.Error().Err(err).Msg("Stops CSV unreadable")
		c.String(http.StatusInternalServerError, "Error saving data.")
		return
	}

	stops := make([]model.Stop, 0, len(records))
	for _, rec := range tabular.NormalizeAll(records) {
		srno, err := strconv.Atoi(rec.Get("srno"))
		if err != nil {
			h.log.Error().Err(err).Str("srno", rec.Get("srno")).Msg("Invalid stop serial number")
			c.String(http.StatusInternalServerError, "Error saving data.")
			return
		}
		stops = append(stops, model.Stop{
			SrNo:     srno,
			Code:     rec.Get("code"),
			StopName: rec.Get("stopname"),
		})
	}

	if err := h.stops.InsertBatch(c.Request.Context(), stops); err != nil {
		h.log.Error().Err(err).Msg("Stops insert failed")
		c.String(http.StatusInternalServerError, "Error saving data.")
		return
	}

	h.log.Info().Int("count", len(stops)).Msg("Stops file ingested")
	c.String(http.StatusOK, "File uploaded and data saved.")
}

// uploadError maps pipeline failures onto the error taxonomy: unreadable
// input is the caller's fault, everything else is a server-side failure.
func (h *Handler) uploadError(c *gin.Context, err error) {
	if errors.Is(err, pkgerrors.ErrMalformedInput) {
		h.log.Warn().Err(err).Msg("Rejected malformed upload")
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid file format", "error": err.Error()})
		return
	}

	var perr pkgerrors.PersistenceError
	if errors.As(err, &perr) {
		h.log.Error().Err(err).Msg("Blob storage failure")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching file from storage", "error": err.Error()})
		return
	}

	h.log.Error().Err(err).Msg("Upload processing failed")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
}
