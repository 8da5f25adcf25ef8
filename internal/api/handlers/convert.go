package handlers

import (
	"github.com/PxPatel/auction-book/internal/api/models"
	"github.com/PxPatel/auction-book/internal/matching"
	"github.com/PxPatel/auction-book/internal/types"
)

// convertTradesToDTO converts tape trades to DTO trades
func convertTradesToDTO(trades []*types.Trade) []models.TradeDTO {
	dtos := make([]models.TradeDTO, len(trades))
	for i, trade := range trades {
		dtos[i] = models.TradeDTO{
			TradeID:      trade.TradeID,
			BuyOrderID:   trade.BuyOrderID(),
			SellOrderID:  trade.SellOrderID(),
			MakerOrderID: trade.MakerOrderID,
			TakerOrderID: trade.TakerOrderID,
			TakerSide:    trade.TakerSide.String(),
			Price:        trade.Price,
			Quantity:     trade.Quantity,
			Timestamp:    trade.Timestamp,
		}
	}
	return dtos
}

func convertExecutionToDTO(exec *matching.Execution) *models.ExecutionDTO {
	dto := &models.ExecutionDTO{
		OrderID:   exec.OrderID,
		OrderType: exec.OrderType.String(),
		Side:      exec.Side.String(),
		Requested: exec.Requested,
		Filled:    exec.Filled,
		Remaining: exec.Remaining,
		Resting:   exec.Resting,
		Pending:   exec.Pending,
		Trades:    convertTradesToDTO(exec.Trades),
	}
	for _, c := range exec.Conversions {
		dto.Conversions = append(dto.Conversions, models.ConversionDTO{
			StopID:    c.StopID,
			OrderType: c.OrderType.String(),
			Filled:    c.Filled,
			Remaining: c.Remaining,
			Resting:   c.Resting,
		})
	}
	return dto
}

// convertOrderToDTO converts a live order to DTO
func convertOrderToDTO(order types.Order) models.OrderDTO {
	return models.OrderDTO{
		OrderID:   order.ID,
		OrderType: order.OrderType.String(),
		Side:      order.Side.String(),
		Price:     order.Price,
		Quantity:  order.Quantity,
		Timestamp: order.Timestamp,
	}
}

func convertOrdersToDTO(orders []types.Order) []models.OrderDTO {
	dtos := make([]models.OrderDTO, len(orders))
	for i, order := range orders {
		dtos[i] = convertOrderToDTO(order)
	}
	return dtos
}

func convertSnapshotToDTO(snap matching.MarketSnapshot) models.MarketPriceDTO {
	return models.MarketPriceDTO{
		Midpoint:  snap.Midpoint,
		VWAP:      snap.VWAP,
		LastTrade: snap.LastTrade,
		Spread:    snap.Spread,
		Timestamp: snap.Timestamp,
	}
}

func convertBandsToDTO(bands []matching.DepthBand) []models.DepthBandDTO {
	dtos := make([]models.DepthBandDTO, len(bands))
	for i, band := range bands {
		dtos[i] = models.DepthBandDTO{Low: band.Low, High: band.High, Quantity: band.Quantity}
	}
	return dtos
}

func convertStopsToDTO(stops []types.StopOrder) []models.StopDTO {
	dtos := make([]models.StopDTO, len(stops))
	for i, stop := range stops {
		dtos[i] = models.StopDTO{
			OrderID:        stop.ID,
			Side:           stop.Side.String(),
			Quantity:       stop.Quantity,
			TriggerPrice:   stop.TriggerPrice,
			ConvertToLimit: stop.ConvertToLimit,
			LimitPrice:     stop.LimitPrice,
			State:          stop.State.String(),
			Timestamp:      stop.Timestamp,
		}
	}
	return dtos
}
