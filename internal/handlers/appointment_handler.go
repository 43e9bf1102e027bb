package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/dental-clinic/internal/domain/appointment"
	"github.com/BruksfildServices01/dental-clinic/internal/httperr"
	"github.com/BruksfildServices01/dental-clinic/internal/httpresp"
	"github.com/BruksfildServices01/dental-clinic/internal/middleware"
	ucappt "github.com/BruksfildServices01/dental-clinic/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	allocator *ucappt.SlotAllocator
	list      *ucappt.ListAppointmentsByDate
	get       *ucappt.GetAppointment
	ledger    *ucappt.GetLedger

	create         *ucappt.CreateAppointment
	accept         *ucappt.AcceptAppointment
	reject         *ucappt.RejectAppointment
	cancel         *ucappt.CancelAppointment
	reschedule     *ucappt.RequestReschedule
	approve        *ucappt.ApproveReschedule
	rejectProposal *ucappt.RejectReschedule
	complete       *ucappt.CompleteAppointment
}

func NewAppointmentHandler(d ucappt.Deps) *AppointmentHandler {
	return &AppointmentHandler{
		allocator: ucappt.NewSlotAllocator(d.Repo, d.Catalog),
		list:      ucappt.NewListAppointmentsByDate(d.Repo, d.Catalog),
		get:       ucappt.NewGetAppointment(d.Repo),
		ledger:    ucappt.NewGetLedger(d.Repo),

		create:         ucappt.NewCreateAppointment(d),
		accept:         ucappt.NewAcceptAppointment(d),
		reject:         ucappt.NewRejectAppointment(d),
		cancel:         ucappt.NewCancelAppointment(d),
		reschedule:     ucappt.NewRequestReschedule(d),
		approve:        ucappt.NewApproveReschedule(d),
		rejectProposal: ucappt.NewRejectReschedule(d),
		complete:       ucappt.NewCompleteAppointment(d),
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	BranchID  uint   `json:"branch_id" binding:"required"`
	SlotID    uint   `json:"slot_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	ServiceID uint   `json:"service_id" binding:"required"`
	PatientID uint   `json:"patient_id" binding:"required"`
	DoctorID  *uint  `json:"doctor_id"`
	Type      string `json:"type"`
}

type AcceptAppointmentRequest struct {
	DoctorID *uint `json:"doctor_id"`
}

type RescheduleRequest struct {
	BranchID uint   `json:"branch_id" binding:"required"`
	SlotID   uint   `json:"slot_id" binding:"required"`
	Date     string `json:"date" binding:"required"`
}

type CompleteAppointmentRequest struct {
	Treatments []struct {
		ToothNumber int    `json:"tooth_number"`
		Procedure   string `json:"procedure"`
	} `json:"treatments"`
	Items []struct {
		ItemID   uint `json:"item_id"`
		Quantity int  `json:"quantity"`
	} `json:"items"`
}

// ======================================================
// HELPERS
// ======================================================

func actorFrom(c *gin.Context) ucappt.Actor {
	return ucappt.Actor{
		UserID: c.GetUint(middleware.ContextUserID),
		Role:   c.GetString(middleware.ContextUserRole),
	}
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		httperr.BadRequest(c, "invalid_request", "Invalid "+name+".")
		return 0, false
	}
	return uint(v), true
}

// ======================================================
// AVAILABILITY
// ======================================================

// GET /api/branches/:id/free-slots?date=YYYY-MM-DD
func (h *AppointmentHandler) FreeSlots(c *gin.Context) {
	branchID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	date, err := domain.ParseDate(c.Query("date"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	slots, err := h.allocator.FindFreeSlots(c.Request.Context(), domain.AvailabilityInput{
		BranchID: branchID,
		Date:     date,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, slots)
}

// ======================================================
// READ
// ======================================================

// GET /api/appointments?branch_id=&date=&status=
func (h *AppointmentHandler) List(c *gin.Context) {
	branchID, err := strconv.ParseUint(c.Query("branch_id"), 10, 64)
	if err != nil || branchID == 0 {
		httperr.BadRequest(c, "invalid_request", "branch_id is required.")
		return
	}

	date, err := domain.ParseDate(c.Query("date"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	var status *domain.Status
	if s := c.Query("status"); s != "" {
		st := domain.Status(s)
		status = &st
	}

	rows, err := h.list.Execute(c.Request.Context(), uint(branchID), date, status)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, rows)
}

// GET /api/appointments/:id
func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// GET /api/appointments/:id/ledger
func (h *AppointmentHandler) Ledger(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	ledger, err := h.ledger.Execute(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ledger)
}

// ======================================================
// CREATE
// ======================================================

// POST /api/appointments
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), actorFrom(c), ucappt.CreateInput{
		BranchID:  req.BranchID,
		SlotID:    req.SlotID,
		Date:      date,
		ServiceID: req.ServiceID,
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Type:      req.Type,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, ap)
}

// ======================================================
// TRANSITIONS
// ======================================================

// PATCH /api/appointments/:id/accept
func (h *AppointmentHandler) Accept(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	// body is optional
	var req AcceptAppointmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, "invalid_request", "Invalid payload.")
			return
		}
	}

	ap, err := h.accept.Execute(c.Request.Context(), actorFrom(c), id, req.DoctorID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// PATCH /api/appointments/:id/reject
func (h *AppointmentHandler) Reject(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.reject.Execute(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// PATCH /api/appointments/:id/cancel
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// RESCHEDULE
// ======================================================

// POST /api/appointments/:id/reschedule
func (h *AppointmentHandler) RequestReschedule(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	ap, err := h.reschedule.Execute(c.Request.Context(), actorFrom(c), id, ucappt.RescheduleInput{
		BranchID: req.BranchID,
		SlotID:   req.SlotID,
		Date:     date,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// PATCH /api/appointments/:id/reschedule/approve
func (h *AppointmentHandler) ApproveReschedule(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.approve.Execute(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// PATCH /api/appointments/:id/reschedule/reject
func (h *AppointmentHandler) RejectReschedule(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.rejectProposal.Execute(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// COMPLETE
// ======================================================

// POST /api/appointments/:id/complete
func (h *AppointmentHandler) Complete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req CompleteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid payload.")
		return
	}

	in := ucappt.CompleteInput{}
	for _, t := range req.Treatments {
		in.Treatments = append(in.Treatments, domain.TreatmentInput{
			ToothNumber: t.ToothNumber,
			Procedure:   t.Procedure,
		})
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, domain.UsageInput{
			ItemID:   it.ItemID,
			Quantity: it.Quantity,
		})
	}

	res, err := h.complete.Execute(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"appointment": res.Appointment,
		"treatments":  res.Treatments,
		"items":       res.Usages,
	})
}
