package sms

import (
	"encoding/json"
	"errors"
	"net/http"

	"smsvault/internal/common"
	"smsvault/internal/logger"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	service *Service
	log     logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterRoutes mounts the gateway API on router. Authentication is the
// router's middleware concern.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.health).Methods(http.MethodGet)
	router.HandleFunc("/get", h.list).Methods(http.MethodGet)
	router.HandleFunc("/get/{id}", h.get).Methods(http.MethodGet)
	router.HandleFunc("/set", h.set).Methods(http.MethodPost)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("yo"))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.List(r.Context())
	if err != nil {
		h.log.Errorf("list messages: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if messages == nil {
		messages = []*common.Message{}
	}
	h.writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	msg, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			http.Error(w, "Message Not Found", http.StatusNotFound)
			return
		}
		h.log.Errorf("get message %s: %v", id, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, msg)
}

func (h *Handler) set(w http.ResponseWriter, r *http.Request) {
	var msg common.Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&msg); err != nil {
		http.Error(w, "Bad Request: Invalid JSON", http.StatusBadRequest)
		return
	}

	id, err := h.service.Submit(r.Context(), msg)
	if err != nil {
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			http.Error(w, "Bad Request: "+ve.Message, http.StatusBadRequest)
			return
		}
		h.log.Errorf("submit message: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Location", "/get/"+id)
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("write response: %v", err)
	}
}
