package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient 基于testify mock的客户端替身，供测试使用
type MockClient struct {
	mock.Mock
}

// NewMockClient 创建模拟客户端，测试结束时校验期望
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Generate 实现Client接口
func (m *MockClient) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error) {
	args := m.Called(ctx, prompt, NewGenerateOptions(options...))
	resp, _ := args.Get(0).(*Response)
	return resp, args.Error(1)
}

// Name 实现Client接口
func (m *MockClient) Name() string {
	args := m.Called()
	return args.String(0)
}

// MockLoader 需要加载的模拟客户端
type MockLoader struct {
	MockClient
}

// Load 实现Loader接口
func (m *MockLoader) Load(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
