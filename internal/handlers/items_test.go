package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/service"
	"inkwell/internal/service/mocks"
	"inkwell/internal/storage"

	"go.uber.org/mock/gomock"
)

func TestItemHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	order := 2
	parent := "folder-1"

	tests := []struct {
		name          string
		projectID     string
		body          string
		mockSetup     func(*mocks.MockItemService)
		wantStatus    int
		checkResponse func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:      "successful create",
			projectID: "1",
			body:      `{"parent_item_id":"folder-1","item_type":"character","name":"Mara","metadata":{"age":31},"order_index":2}`,
			mockSetup: func(m *mocks.MockItemService) {
				m.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, req service.CreateItemRequest) (*storage.Item, error) {
						if req.ProjectID != 1 || req.ParentItemID != "folder-1" || req.ItemType != storage.ItemCharacter || *req.OrderIndex != order {
							return nil, fmt.Errorf("unexpected request %+v", req)
						}
						return &storage.Item{
							ID:           "item-1",
							ProjectID:    1,
							ParentItemID: &parent,
							ItemType:     storage.ItemCharacter,
							Name:         "Mara",
							Metadata:     req.Metadata,
							OrderIndex:   order,
							DepthLevel:   1,
						}, nil
					})
			},
			wantStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp ItemResponse
				decodeBody(t, w, &resp)
				if resp.ID != "item-1" || resp.ParentItemID == nil || *resp.ParentItemID != parent {
					t.Errorf("response = %+v", resp)
				}
				if resp.Icon != "person" {
					t.Errorf("Icon = %q, want kind default person", resp.Icon)
				}
			},
		},
		{
			name:       "bad project id",
			projectID:  "abc",
			body:       `{"name":"x"}`,
			mockSetup:  func(m *mocks.MockItemService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:      "missing project",
			projectID: "2",
			body:      `{"name":"x"}`,
			mockSetup: func(m *mocks.MockItemService) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("project: %w", service.ErrNotFound))
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := mocks.NewMockItemService(ctrl)
			tt.mockSetup(mockService)
			handler := NewItemHandler(mockService)

			w := httptest.NewRecorder()
			handler.Create(w, newRequest(http.MethodPost, "/api/projects/"+tt.projectID+"/items", tt.body, map[string]string{"projectID": tt.projectID}))

			if w.Code != tt.wantStatus {
				t.Errorf("Create() status = %v, want %v (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestItemHandler_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		body       string
		mockSetup  func(*mocks.MockItemService)
		wantStatus int
	}{
		{
			name: "rename",
			body: `{"name":"Prologue"}`,
			mockSetup: func(m *mocks.MockItemService) {
				m.EXPECT().
					Update(gomock.Any(), "item-1", service.UpdateItemRequest{Name: strPtr("Prologue")}).
					Return(&storage.Item{ID: "item-1", ItemType: storage.ItemDocument, Name: "Prologue"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "move to root",
			body: `{"parent_item_id":""}`,
			mockSetup: func(m *mocks.MockItemService) {
				m.EXPECT().
					Update(gomock.Any(), "item-1", service.UpdateItemRequest{ParentItemID: strPtr("")}).
					Return(&storage.Item{ID: "item-1", ItemType: storage.ItemDocument}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "move under descendant",
			body: `{"parent_item_id":"child"}`,
			mockSetup: func(m *mocks.MockItemService) {
				m.EXPECT().
					Update(gomock.Any(), "item-1", gomock.Any()).
					Return(nil, fmt.Errorf("item item-1 under descendant child: %w", service.ErrCycle))
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "invalid JSON body",
			body:       `{"name":`,
			mockSetup:  func(m *mocks.MockItemService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := mocks.NewMockItemService(ctrl)
			tt.mockSetup(mockService)
			handler := NewItemHandler(mockService)

			w := httptest.NewRecorder()
			handler.Update(w, newRequest(http.MethodPatch, "/api/items/item-1", tt.body, map[string]string{"itemID": "item-1"}))

			if w.Code != tt.wantStatus {
				t.Errorf("Update() status = %v, want %v (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestItemHandler_GetAndDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockItemService(ctrl)
	mockService.EXPECT().Get(gomock.Any(), "doc").
		Return(&storage.Item{ID: "doc", ItemType: storage.ItemDocument, Name: "Doc", Content: "Once upon", Icon: "star"}, nil)
	mockService.EXPECT().Get(gomock.Any(), "gone").Return(nil, service.ErrNotFound)
	mockService.EXPECT().Delete(gomock.Any(), "folder").Return(int64(4), nil)
	handler := NewItemHandler(mockService)

	w := httptest.NewRecorder()
	handler.Get(w, newRequest(http.MethodGet, "/api/items/doc", "", map[string]string{"itemID": "doc"}))
	if w.Code != http.StatusOK {
		t.Fatalf("Get() status = %v, want 200", w.Code)
	}
	var item ItemResponse
	decodeBody(t, w, &item)
	if item.Content != "Once upon" || item.Icon != "star" {
		t.Errorf("Get() = %+v, want content and explicit icon", item)
	}

	w = httptest.NewRecorder()
	handler.Get(w, newRequest(http.MethodGet, "/api/items/gone", "", map[string]string{"itemID": "gone"}))
	if w.Code != http.StatusNotFound {
		t.Errorf("Get() of missing item status = %v, want 404", w.Code)
	}

	w = httptest.NewRecorder()
	handler.Delete(w, newRequest(http.MethodDelete, "/api/items/folder", "", map[string]string{"itemID": "folder"}))
	if w.Code != http.StatusOK {
		t.Fatalf("Delete() status = %v, want 200", w.Code)
	}
	var deleted DeleteItemResponse
	decodeBody(t, w, &deleted)
	if deleted.Removed != 4 {
		t.Errorf("Removed = %d, want 4", deleted.Removed)
	}
}
