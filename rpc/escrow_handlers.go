package rpc

import (
	"encoding/json"

	"escrowd/native/escrow"
)

type createParams struct {
	Caller  string                `json:"caller"`
	Create  escrow.CreateParams   `json:"create"`
	Deposit escrow.GenericBalance `json:"deposit"`
}

type createMilestoneParams struct {
	Caller    string                 `json:"caller"`
	Milestone escrow.MilestoneParams `json:"milestone"`
	Deposit   escrow.GenericBalance  `json:"deposit"`
}

type setRecipientParams struct {
	Caller    string `json:"caller"`
	ID        string `json:"id"`
	Recipient string `json:"recipient"`
}

type approveMilestoneParams struct {
	Caller      string `json:"caller"`
	ID          string `json:"id"`
	MilestoneID string `json:"milestone_id"`
}

type extendMilestoneParams struct {
	Caller      string  `json:"caller"`
	ID          string  `json:"id"`
	MilestoneID string  `json:"milestone_id"`
	EndHeight   *uint64 `json:"end_height,omitempty"`
	EndTime     *int64  `json:"end_time,omitempty"`
}

type refundParams struct {
	Caller string `json:"caller"`
	ID     string `json:"id"`
}

type idParams struct {
	ID string `json:"id"`
}

type milestoneIDParams struct {
	ID          string `json:"id"`
	MilestoneID string `json:"milestone_id"`
}

type listResult struct {
	Escrows []string `json:"escrows"`
}

type listMilestonesResult struct {
	Milestones []string `json:"milestones"`
}

func decodeParams[T any](raw json.RawMessage) (*T, *RPCError) {
	params := new(T)
	if len(raw) == 0 {
		return nil, &RPCError{Code: codeInvalidParams, Message: "params required"}
	}
	if err := json.Unmarshal(raw, params); err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: "malformed params: " + err.Error()}
	}
	return params, nil
}

func (s *Server) dispatch(method string, raw json.RawMessage) (any, *RPCError) {
	switch method {
	case "escrow_create":
		params, rpcErr := decodeParams[createParams](raw)
		if rpcErr != nil {
			return nil, rpcErr
		}
		result, err := s.engine.Create(params.Caller, params.Create, params.Deposit)
		if err != nil {
			return nil, errorToRPC(err)
		}
		return result, nil

	case "escrow_createMilestone":
		params, rpcErr := decodeParams[createMilestoneParams](raw)
		if rpcErr != nil {
			return nil, rpcErr
		}
		result, err := s.engine.CreateMilestone(params.Caller, params.Milestone, params.Deposit)
		if err != nil {
			return nil, errorToRPC(err)
		}
		return result, nil

	case "escrow_setRecipient":
		params, rpcErr := decodeParams[setRecipientParams](raw)
		if rpcErr != nil {
			return nil, rpcErr
		}
		result, err := s.engine.SetRecipient(params.Caller, params.ID, params.Recipient)
		if err != nil {
			return nil, errorToRPC(err)
		}
		return result, nil

	case "escrow_approveMilestone":
		params, rpcErr := decodeParams[approveMilestoneParams](raw)
		if rpcErr != nil {
			return nil, rpcErr
		}
		result, err := s.engine.ApproveMilestone(params.Caller, params.ID, params.MilestoneID)
		if err != nil {
			return nil, errorToRPC(err)
		}
		return result, nil

	case "escrow_extendMilestone":
		params, rpcErr := decodeParams[extendMilestoneParams](raw)
		if rpcErr != nil {
			return nil, rpcErr
		}
		result, err := s.engine.ExtendMilestone(params.Caller, params.ID, params.MilestoneID, params.EndHeight, params.EndTime)
		if err != nil {
			return nil, errorToRPC(err)
		}
		return result, nil

	case "escrow_refund":
		params, rpcErr := decodeParams[refundParams](raw)
		if rpcErr != nil {
			return nil, rpcErr
		}
		result, err := s.engine.Refund(params.Caller, params.ID)
		if err != nil {
			return nil, errorToRPC(err)
		}
		return result, nil

	case "escrow_list":
		ids, err := s.query.List()
		if err != nil {
			return nil, errorToRPC(err)
		}
		return listResult{Escrows: ids}, nil

	case "escrow_details":
		params, rpcErr := decodeParams[idParams](raw)
		if rpcErr != nil {
			return nil, rpcErr
		}
		details, err := s.query.EscrowDetails(params.ID)
		if err != nil {
			return nil, errorToRPC(err)
		}
		return details, nil

	case "escrow_milestoneDetails":
		params, rpcErr := decodeParams[milestoneIDParams](raw)
		if rpcErr != nil {
			return nil, rpcErr
		}
		milestone, err := s.query.MilestoneDetails(params.ID, params.MilestoneID)
		if err != nil {
			return nil, errorToRPC(err)
		}
		return milestone, nil

	case "escrow_listMilestones":
		params, rpcErr := decodeParams[idParams](raw)
		if rpcErr != nil {
			return nil, rpcErr
		}
		ids, err := s.query.ListMilestones(params.ID)
		if err != nil {
			return nil, errorToRPC(err)
		}
		return listMilestonesResult{Milestones: ids}, nil
	}

	return nil, &RPCError{Code: codeMethodNotFound, Message: "method not found: " + method}
}
