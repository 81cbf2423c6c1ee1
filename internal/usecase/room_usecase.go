package usecase

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"savepro/internal/domain/entity"
	"savepro/internal/domain/repository"
	"savepro/internal/infrastructure/lock"
	"savepro/internal/infrastructure/ratelimit"
	ws "savepro/internal/infrastructure/websocket"
	"savepro/pkg/errors"
)

type RoomUseCase struct {
	roomRepo        repository.RoomRepository
	wsManager       *ws.Manager
	rateLimiter     *ratelimit.RateLimiter
	roomLocks       *lock.KeyedMutex
	maxCodeAttempts int
}

func NewRoomUseCase(
	roomRepo repository.RoomRepository,
	wsManager *ws.Manager,
	roomLocks *lock.KeyedMutex,
	maxCodeAttempts int,
) *RoomUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	if maxCodeAttempts <= 0 {
		maxCodeAttempts = 20
	}

	return &RoomUseCase{
		roomRepo:        roomRepo,
		wsManager:       wsManager,
		rateLimiter:     rateLimiter,
		roomLocks:       roomLocks,
		maxCodeAttempts: maxCodeAttempts,
	}
}

type CreateRoomInput struct {
	DisplayName string
	Role        string
	RoomName    string
}

type QuotationInput struct {
	ProductName string
	Details     string
	Images      string // comma-separated URLs
	Price       string
}

type SendMessageInput struct {
	RoomID    string
	Text      string
	Type      string
	Quotation *QuotationInput
}

type MemberEvent struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

func (uc *RoomUseCase) CreateRoom(ctx context.Context, userID string, input CreateRoomInput) (*entity.Room, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "create_room")
	if !allowed {
		log.Printf("CreateRoom Rate Limited: User %s must wait %v", userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another room", waitTime)
	}

	if input.Role != entity.RoleBuyer && input.Role != entity.RoleSeller {
		return nil, errors.BadRequest("Role must be either buyer or seller", nil)
	}

	roomName := input.RoomName
	if roomName == "" {
		roomName = "Chat Room"
	}

	roomID, err := uc.allocateRoomCode(ctx)
	if err != nil {
		return nil, err
	}

	room := &entity.Room{
		ID:   roomID,
		Name: roomName,
		Members: map[string]entity.Member{
			userID: {Name: input.DisplayName, Role: input.Role},
		},
		Messages: make(map[string]*entity.Message),
		Status:   entity.RoomStatusActive,
	}

	if err := uc.roomRepo.Create(ctx, room); err != nil {
		log.Printf("CreateRoom Error: Failed to create room %s: %v", roomID, err)
		return nil, err
	}

	log.Printf("CreateRoom: Room %s created by %s as %s", roomID, userID, input.Role)
	return room, nil
}

// allocateRoomCode draws random 8-digit codes until one is free. The code
// space is sparse, but retries are still capped so a storage fault cannot
// spin the loop forever.
func (uc *RoomUseCase) allocateRoomCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < uc.maxCodeAttempts; attempt++ {
		code := generateRoomCode()
		exists, err := uc.roomRepo.Exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		log.Printf("allocateRoomCode: code collision on %s (attempt %d)", code, attempt+1)
	}
	return "", errors.Internal("Failed to allocate a unique room code", nil)
}

func (uc *RoomUseCase) JoinRoom(ctx context.Context, userID, displayName, roomCode string) (*entity.Room, string, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "join_room")
	if !allowed {
		log.Printf("JoinRoom Rate Limited: User %s must wait %v", userID, waitTime)
		return nil, "", errors.TooManyRequests("Rate limit exceeded. Please wait before joining another room", waitTime)
	}

	uc.roomLocks.Lock(roomCode)
	defer uc.roomLocks.Unlock(roomCode)

	room, err := uc.roomRepo.GetByID(ctx, roomCode)
	if err != nil {
		return nil, "", err
	}

	if room.HasMember(userID) {
		return nil, "", errors.AlreadyMember("You are already a member of this room")
	}

	// Role is derived, never caller-chosen: the open slot decides.
	var assignedRole string
	switch {
	case !room.RoleTaken(entity.RoleBuyer):
		assignedRole = entity.RoleBuyer
	case !room.RoleTaken(entity.RoleSeller):
		assignedRole = entity.RoleSeller
	default:
		return nil, "", errors.RoomFull("This room already has a buyer and a seller")
	}

	room.Members[userID] = entity.Member{Name: displayName, Role: assignedRole}

	notice := uc.appendSystemMessage(room, fmt.Sprintf("%s joined the room as %s", displayName, assignedRole))

	if err := uc.roomRepo.Update(ctx, room); err != nil {
		log.Printf("JoinRoom Error: Failed to update room %s: %v", roomCode, err)
		return nil, "", err
	}

	uc.wsManager.PublishEvent(room.ID, ws.EventUserJoined, MemberEvent{
		UserID: userID,
		Name:   displayName,
		Role:   assignedRole,
	})
	uc.wsManager.PublishEvent(room.ID, ws.EventReceiveMessage, notice)

	log.Printf("JoinRoom: User %s joined room %s as %s", userID, roomCode, assignedRole)
	return room, assignedRole, nil
}

func (uc *RoomUseCase) GetRoomsForUser(ctx context.Context, userID string) ([]*entity.Room, error) {
	rooms, err := uc.roomRepo.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Most recently touched room first, whatever order the store returned.
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].UpdatedAt.After(rooms[j].UpdatedAt)
	})

	return rooms, nil
}

func (uc *RoomUseCase) GetRoom(ctx context.Context, userID, roomID string) (*entity.Room, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if !room.HasMember(userID) {
		return nil, errors.Forbidden("You do not have access to this room", nil)
	}

	return room, nil
}

func (uc *RoomUseCase) CompleteRoom(ctx context.Context, userID, roomID string) (*entity.Room, *entity.Message, error) {
	uc.roomLocks.Lock(roomID)
	defer uc.roomLocks.Unlock(roomID)

	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}

	if !room.HasMember(userID) {
		return nil, nil, errors.Forbidden("You do not have access to this room", nil)
	}

	room.Status = entity.RoomStatusCompleted
	notice := uc.appendSystemMessage(room, "Buyer confirmed receipt. The transaction is complete.")

	if err := uc.roomRepo.Update(ctx, room); err != nil {
		log.Printf("CompleteRoom Error: Failed to update room %s: %v", roomID, err)
		return nil, nil, err
	}

	uc.wsManager.PublishEvent(room.ID, ws.EventReceiveMessage, notice)

	log.Printf("CompleteRoom: Room %s completed by %s", roomID, userID)
	return room, notice, nil
}

func (uc *RoomUseCase) SetTrackingNumber(ctx context.Context, userID, roomID, trackingNumber string) (*entity.Room, error) {
	if trackingNumber == "" {
		return nil, errors.BadRequest("Tracking number is required", nil)
	}

	uc.roomLocks.Lock(roomID)
	defer uc.roomLocks.Unlock(roomID)

	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	member, ok := room.Members[userID]
	if !ok {
		return nil, errors.Forbidden("You do not have access to this room", nil)
	}
	if member.Role != entity.RoleSeller {
		return nil, errors.Forbidden("Only the seller can set the tracking number", nil)
	}

	room.TrackingNumber = trackingNumber
	notice := uc.appendSystemMessage(room, fmt.Sprintf("Seller added tracking number %s", trackingNumber))

	if err := uc.roomRepo.Update(ctx, room); err != nil {
		log.Printf("SetTrackingNumber Error: Failed to update room %s: %v", roomID, err)
		return nil, err
	}

	uc.wsManager.PublishEvent(room.ID, ws.EventReceiveMessage, notice)

	return room, nil
}

func (uc *RoomUseCase) SendMessage(ctx context.Context, userID string, input SendMessageInput) (*entity.Message, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "send_message")
	if !allowed {
		log.Printf("SendMessage Rate Limited: User %s must wait %v", userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", waitTime)
	}

	msgType := input.Type
	if msgType == "" {
		msgType = entity.MessageTypeText
	}

	switch msgType {
	case entity.MessageTypeText, entity.MessageTypeImage:
		if input.Text == "" {
			return nil, errors.BadRequest("Message text is required", nil)
		}
	case entity.MessageTypeQuotation:
		if input.Quotation == nil {
			return nil, errors.BadRequest("Quotation payload is required", nil)
		}
		if input.Quotation.ProductName == "" || input.Quotation.Details == "" || input.Quotation.Price == "" {
			return nil, errors.BadRequest("Quotation requires productName, details and price", nil)
		}
	default:
		return nil, errors.BadRequest("Message type must be text, image or quotation", nil)
	}

	uc.roomLocks.Lock(input.RoomID)
	defer uc.roomLocks.Unlock(input.RoomID)

	room, err := uc.roomRepo.GetByID(ctx, input.RoomID)
	if err != nil {
		log.Printf("SendMessage Error: Room %s not found: %v", input.RoomID, err)
		return nil, err
	}

	if !room.HasMember(userID) {
		log.Printf("SendMessage Error: User %s is not a member of room %s", userID, input.RoomID)
		return nil, errors.Forbidden("You are not a member of this room", nil)
	}

	message := &entity.Message{
		ID:        uc.uniqueMessageID(room),
		SenderID:  userID,
		Text:      input.Text,
		Timestamp: time.Now().Unix(),
		Type:      msgType,
	}

	if msgType == entity.MessageTypeQuotation {
		message.Quotation = &entity.Quotation{
			ProductName: input.Quotation.ProductName,
			Details:     input.Quotation.Details,
			Images:      input.Quotation.Images,
			Price:       input.Quotation.Price,
			Status:      false,
		}
	}

	room.Messages[message.ID] = message

	if err := uc.roomRepo.Update(ctx, room); err != nil {
		log.Printf("SendMessage Error: Failed to update room %s: %v", input.RoomID, err)
		return nil, err
	}

	uc.wsManager.PublishEvent(room.ID, ws.EventReceiveMessage, message)

	return message, nil
}

// SubmitQuotation appends a quotation message awaiting the buyer's decision.
func (uc *RoomUseCase) SubmitQuotation(ctx context.Context, userID, roomID string, quotation QuotationInput) (*entity.Message, error) {
	return uc.SendMessage(ctx, userID, SendMessageInput{
		RoomID:    roomID,
		Type:      entity.MessageTypeQuotation,
		Quotation: &quotation,
	})
}

func (uc *RoomUseCase) ListMessages(ctx context.Context, userID, roomID string) ([]*entity.Message, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if !room.HasMember(userID) {
		return nil, errors.Forbidden("You do not have access to this room", nil)
	}

	return room.SortedMessages(), nil
}

func (uc *RoomUseCase) DeleteMessage(ctx context.Context, userID, roomID, messageID string) error {
	uc.roomLocks.Lock(roomID)
	defer uc.roomLocks.Unlock(roomID)

	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return err
	}

	if !room.HasMember(userID) {
		return errors.Forbidden("You do not have access to this room", nil)
	}

	message, ok := room.Messages[messageID]
	if !ok {
		return errors.NotFound("Message", nil)
	}

	if message.SenderID != userID {
		return errors.Forbidden("Only the sender can delete this message", nil)
	}

	delete(room.Messages, messageID)

	if err := uc.roomRepo.Update(ctx, room); err != nil {
		log.Printf("DeleteMessage Error: Failed to update room %s: %v", roomID, err)
		return err
	}

	uc.wsManager.PublishEvent(room.ID, ws.EventMessageDeleted, map[string]string{
		"messageId": messageID,
		"RoomID":    roomID,
	})

	log.Printf("DeleteMessage: Message %s deleted from room %s by %s", messageID, roomID, userID)
	return nil
}

// AcceptQuotation latches a quotation's status to accepted. The transition
// is one-way; repeating the call is a successful no-op. The returned bool
// reports whether this call performed the transition.
func (uc *RoomUseCase) AcceptQuotation(ctx context.Context, userID, roomID, messageID string) (*entity.Message, bool, error) {
	uc.roomLocks.Lock(roomID)
	defer uc.roomLocks.Unlock(roomID)

	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, false, err
	}

	if !room.HasMember(userID) {
		return nil, false, errors.Forbidden("You do not have access to this room", nil)
	}

	message, ok := room.Messages[messageID]
	if !ok || message.Type != entity.MessageTypeQuotation || message.Quotation == nil {
		return nil, false, errors.NotFound("Quotation", nil)
	}

	if message.Quotation.Status {
		log.Printf("AcceptQuotation: Quotation %s in room %s already accepted", messageID, roomID)
		return message, false, nil
	}

	message.Quotation.Status = true

	if err := uc.roomRepo.Update(ctx, room); err != nil {
		log.Printf("AcceptQuotation Error: Failed to update room %s: %v", roomID, err)
		return nil, false, err
	}

	uc.wsManager.PublishEvent(room.ID, ws.EventReceiveMessage, message)

	log.Printf("AcceptQuotation: Quotation %s in room %s accepted by %s", messageID, roomID, userID)
	return message, true, nil
}

// appendSystemMessage adds a sender-less notice to the log. Callers hold the
// room lock and are responsible for persisting the room afterwards.
func (uc *RoomUseCase) appendSystemMessage(room *entity.Room, text string) *entity.Message {
	message := &entity.Message{
		ID:        uc.uniqueMessageID(room),
		Text:      text,
		Timestamp: time.Now().Unix(),
		Type:      entity.MessageTypeSystem,
	}
	room.Messages[message.ID] = message
	return message
}

// uniqueMessageID generates a millisecond timestamp plus random suffix,
// regenerating while the ID is already taken in this room.
func (uc *RoomUseCase) uniqueMessageID(room *entity.Room) string {
	for {
		id := generateMessageID()
		if _, taken := room.Messages[id]; !taken {
			return id
		}
	}
}

func generateRoomCode() string {
	return strconv.Itoa(10000000 + rand.Intn(90000000))
}

func generateMessageID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + strconv.Itoa(rand.Intn(1000))
}
