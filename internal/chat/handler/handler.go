// Package handler exposes the command pipeline over gRPC.
package handler

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fekuna/omnipos-assistant-service/internal/auth"
	"github.com/fekuna/omnipos-assistant-service/internal/chat"
	"github.com/fekuna/omnipos-assistant-service/internal/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type AssistantHandler struct {
	proc   chat.Processor
	logger logger.ZapLogger
}

func NewAssistantHandler(proc chat.Processor, log logger.ZapLogger) *AssistantHandler {
	return &AssistantHandler{
		proc:   proc,
		logger: log,
	}
}

func (h *AssistantHandler) ProcessCommand(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text := strings.TrimSpace(req.GetFields()["text"].GetStringValue())
	if text == "" {
		return nil, status.Error(codes.InvalidArgument, "text is required")
	}

	res := h.proc.Process(ctx, text)
	h.logger.Debug("Command processed",
		zap.String("user_id", auth.UserID(ctx)),
		zap.String("workflow_id", res.WorkflowID),
		zap.Bool("success", res.Success),
	)

	out, err := toStruct(res)
	if err != nil {
		h.logger.Error("Failed to encode result", zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to encode result")
	}
	return out, nil
}

// toStruct goes through JSON so decimals and times keep their JSON encoding.
func toStruct(res chat.Result) (*structpb.Struct, error) {
	body, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(body, out); err != nil {
		return nil, err
	}
	return out, nil
}
