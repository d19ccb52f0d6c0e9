//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"parking-lot-manager/internal/handler/api"
	resdto "parking-lot-manager/internal/handler/dto/response"
	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/usecase/commands"
	"parking-lot-manager/internal/usecase/queries"
	"parking-lot-manager/internal/usecase/shared"
	"parking-lot-manager/tests/common/httptest"
	"parking-lot-manager/tests/common/testutil"
	commandsmock "parking-lot-manager/tests/mock/commands"
	queriesmock "parking-lot-manager/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

var (
	admin = shared.Caller{UserID: 1, IsAdmin: true}
	t0    = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
)

type CatalogHandlerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	mockCtrl *gomock.Controller
	mockCmds *commandsmock.MockCatalogCommands
	mockQ    *queriesmock.MockCatalogQueries
}

func (s *CatalogHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCmds = commandsmock.NewMockCatalogCommands(s.mockCtrl)
	s.mockQ = queriesmock.NewMockCatalogQueries(s.mockCtrl)
	h := api.NewCatalogHandler(s.mockCmds, s.mockQ)

	s.router.GET("/lots", h.ListLots)
	s.router.GET("/lots/:id", h.GetLot)
	s.router.GET("/lots/:id/spots", h.ListLotSpots)
	s.router.GET("/spots", h.ListSpots)
	s.router.POST("/admin/lots", httptest.WithCaller(admin.UserID, true, h.CreateLot))
	s.router.PATCH("/admin/lots/:id", httptest.WithCaller(admin.UserID, true, h.UpdateLot))
	s.router.DELETE("/admin/lots/:id", httptest.WithCaller(admin.UserID, true, h.DeleteLot))
}

func (s *CatalogHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCatalogHandlerSuite(t *testing.T) {
	suite.Run(t, new(CatalogHandlerTestSuite))
}

func lotView(id int64) queries.LotView {
	return queries.LotView{
		ID:        id,
		Name:      "Central",
		Price:     decimal.RequireFromString("40.00"),
		Capacity:  3,
		Occupied:  1,
		Available: 2,
		CreatedAt: t0,
		UpdatedAt: t0,
	}
}

func (s *CatalogHandlerTestSuite) TestListLots() {
	s.mockQ.EXPECT().ListLots(gomock.Any()).Return([]queries.LotView{lotView(1), lotView(2)}, nil).Times(1)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/lots", nil, "")

	var response []resdto.LotResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
	s.Require().Len(response, 2)
	s.Equal(int64(2), response[1].ID)
	s.Equal(2, response[0].Available)
	s.Equal("40.00", response[0].Price)
}

func (s *CatalogHandlerTestSuite) TestGetLot() {
	s.Run("正常系", func() {
		v := lotView(5)
		s.mockQ.EXPECT().GetLot(gomock.Any(), int64(5)).Return(&v, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/lots/5", nil, "")

		var response resdto.LotResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("Central", response.Name)
	})

	s.Run("異常系: 存在しないロットは404", func() {
		s.mockQ.EXPECT().GetLot(gomock.Any(), int64(99)).Return(nil, errs.Wrap(errs.ErrNotFound, "lot 99")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/lots/99", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, string(errs.KindNotFound))
	})

	s.Run("異常系: 数値でないIDは400", func() {
		for _, path := range []string{"/lots/abc", "/lots/0", "/lots/-3"} {
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, path, nil, "")
			httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, string(errs.KindInvalidArgument))
		}
	})
}

func (s *CatalogHandlerTestSuite) TestListSpots() {
	spots := []queries.SpotView{
		{ID: 10, LotID: 5, Ordinal: 1, Status: "occupied", UpdatedAt: t0},
		{ID: 11, LotID: 5, Ordinal: 2, Status: "available", UpdatedAt: t0},
	}

	s.Run("ロット指定のパス", func() {
		s.mockQ.EXPECT().ListSpots(gomock.Any(), int64(5)).Return(spots, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/lots/5/spots", nil, "")

		var response []resdto.SpotResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Require().Len(response, 2)
		s.Equal("occupied", response[0].Status)
	})

	s.Run("クエリなしは全ロット", func() {
		s.mockQ.EXPECT().ListSpots(gomock.Any(), int64(0)).Return([]queries.SpotView{}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/spots", nil, "")
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`[]`, rec.Body.String())
	})

	s.Run("lot_idクエリ", func() {
		s.mockQ.EXPECT().ListSpots(gomock.Any(), int64(5)).Return(spots, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/spots?lot_id=5", nil, "")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("異常系: 不正なlot_id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/spots?lot_id=x", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, string(errs.KindInvalidArgument))
	})
}

func (s *CatalogHandlerTestSuite) TestCreateLot() {
	url := "/admin/lots"
	reqBody := map[string]any{"name": "Central", "price": "40.00", "address": "MG Road", "pin": "560001", "capacity": 3}

	s.Run("正常系: 201とLocationを返す", func() {
		s.mockCmds.EXPECT().CreateLot(gomock.Any(), admin, gomock.Any()).
			DoAndReturn(func(_ any, _ shared.Caller, req commands.CreateLotRequest) (int64, error) {
				s.Equal("Central", req.Name)
				s.True(decimal.NewFromInt(40).Equal(req.Price))
				s.Equal(3, req.Capacity)
				return 8, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var response resdto.CreatedResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(int64(8), response.ID)
		httptest.AssertLocation(s.T(), rec, "/api/lots/8")
	})

	s.Run("数値の価格も受け付ける", func() {
		s.mockCmds.EXPECT().CreateLot(gomock.Any(), admin, gomock.Any()).
			DoAndReturn(func(_ any, _ shared.Caller, req commands.CreateLotRequest) (int64, error) {
				s.True(decimal.RequireFromString("12.5").Equal(req.Price))
				return 9, nil
			}).Times(1)

		body := testutil.DtoMap(s.T(), reqBody, testutil.Field("price", 12.5))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
		s.Equal(http.StatusCreated, rec.Code)
	})

	s.Run("異常系: バリデーションエラーは400", func() {
		cases := []validationCase{
			{name: "missing price", mutate: testutil.Field("price", nil), expectCode: http.StatusBadRequest},
			{name: "capacity zero", mutate: testutil.Field("capacity", 0), expectCode: http.StatusBadRequest},
			{name: "missing name", mutate: testutil.Field("name", nil), expectCode: http.StatusBadRequest},
			{name: "price not a number", mutate: testutil.Field("price", "cheap"), expectCode: http.StatusBadRequest},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				body := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, string(errs.KindInvalidArgument))
			})
		}
	})

	s.Run("異常系: 負の価格はドメインで弾かれる", func() {
		s.mockCmds.EXPECT().CreateLot(gomock.Any(), admin, gomock.Any()).
			Return(int64(0), errs.Wrap(errs.ErrInvalidArgument, "price must not be negative")).Times(1)

		body := testutil.DtoMap(s.T(), reqBody, testutil.Field("price", "-1"))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, string(errs.KindInvalidArgument))
	})
}

func (s *CatalogHandlerTestSuite) TestUpdateLot() {
	s.Run("正常系: 更新後のロットを返す", func() {
		updated := lotView(5)
		updated.Capacity = 5
		gomock.InOrder(
			s.mockCmds.EXPECT().UpdateLot(gomock.Any(), admin, int64(5), commands.UpdateLotRequest{Capacity: testutil.IntPtr(5)}).
				Return(nil),
			s.mockQ.EXPECT().GetLot(gomock.Any(), int64(5)).Return(&updated, nil),
		)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/admin/lots/5", map[string]any{"capacity": 5}, "")

		var response resdto.LotResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(5, response.Capacity)
	})

	s.Run("異常系: 使用中のスポットを減らすと409", func() {
		s.mockCmds.EXPECT().UpdateLot(gomock.Any(), admin, int64(5), gomock.Any()).
			Return(errs.Wrap(errs.ErrLotBusy, "occupied spots above new capacity")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/admin/lots/5", map[string]any{"capacity": 1}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, string(errs.KindLotBusy))
	})
}

func (s *CatalogHandlerTestSuite) TestDeleteLot() {
	s.Run("正常系: 204", func() {
		s.mockCmds.EXPECT().DeleteLot(gomock.Any(), admin, int64(5)).Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/admin/lots/5", nil, "")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("異常系: 予約中のロットは409", func() {
		s.mockCmds.EXPECT().DeleteLot(gomock.Any(), admin, int64(5)).
			Return(errs.Wrap(errs.ErrLotBusy, "lot 5 has active reservations")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/admin/lots/5", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, string(errs.KindLotBusy))
	})
}
