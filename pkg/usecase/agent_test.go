package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gitscribe/gitscribe/pkg/domain/model"
	"github.com/gitscribe/gitscribe/pkg/domain/types"
	"github.com/gitscribe/gitscribe/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/mock"
	"github.com/m-mizutani/gt"
)

type toolMock struct {
	name  string
	run   func(ctx context.Context, args map[string]any) (map[string]any, error)
	calls []map[string]any
}

func (m *toolMock) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{Name: m.name, Description: "test tool"}
}

func (m *toolMock) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	m.calls = append(m.calls, args)
	if m.run != nil {
		return m.run(ctx, args)
	}
	return map[string]any{"ok": true}, nil
}

type toolSetMock map[types.AgentKind][]gollem.Tool

func (m toolSetMock) ToolsFor(kind types.AgentKind) ([]gollem.Tool, error) {
	tools, ok := m[kind]
	if !ok {
		return nil, goerr.New("no tools", goerr.V("kind", kind))
	}
	return tools, nil
}

type transcriptStoreMock struct {
	saved []*model.Transcript
}

func (m *transcriptStoreMock) Save(ctx context.Context, transcript *model.Transcript) error {
	m.saved = append(m.saved, transcript)
	return nil
}

// countingWriter records every Write call separately
type countingWriter struct {
	chunks []string
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.chunks = append(w.chunks, string(p))
	return len(p), nil
}

func streamOf(resps ...*gollem.Response) <-chan *gollem.Response {
	ch := make(chan *gollem.Response, len(resps))
	for _, r := range resps {
		ch <- r
	}
	close(ch)
	return ch
}

// scriptedClient returns a client whose session answers each step with the next script entry
func scriptedClient(script [][]*gollem.Response, inputs *[][]gollem.Input) *mock.LLMClientMock {
	step := 0
	return &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			return &mock.SessionMock{
				StreamFunc: func(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
					if inputs != nil {
						*inputs = append(*inputs, input)
					}
					resps := script[len(script)-1]
					if step < len(script) {
						resps = script[step]
					}
					step++
					return streamOf(resps...), nil
				},
			}, nil
		},
	}
}

func callOf(id, name string, args map[string]any) *gollem.FunctionCall {
	return &gollem.FunctionCall{ID: id, Name: name, Arguments: args}
}

func TestAgent_Run_StreamsText(t *testing.T) {
	ctx := context.Background()
	out := &countingWriter{}

	client := scriptedClient([][]*gollem.Response{
		{
			{Texts: []string{"feat: "}},
			{Texts: []string{"add markdown "}},
			{Texts: []string{"writer"}},
		},
	}, nil)

	uc := usecase.NewAgent(client, toolSetMock{types.AgentCommit: nil}, usecase.WithOutput(out))
	transcript, err := uc.Run(ctx, &model.AgentTask{Kind: types.AgentCommit, Prompt: "write a commit message"})
	gt.NoError(t, err)

	gt.Equal(t, out.chunks, []string{"feat: ", "add markdown ", "writer"})
	gt.Equal(t, transcript.Output, "feat: add markdown writer")
	gt.Equal(t, transcript.Steps, 1)
	gt.Equal(t, transcript.StopReason, model.StopCompleted)
	gt.Equal(t, transcript.Agent, types.AgentCommit)
	gt.V(t, transcript.RunID.String()).NotEqual("")
}

func TestAgent_Run_CallsTool(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	var inputs [][]gollem.Input

	tool := &toolMock{
		name: "get_file_changes_in_directory",
		run: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return map[string]any{"diffs": []model.FileDiff{{File: "main.go", Diff: "+x"}}}, nil
		},
	}

	client := scriptedClient([][]*gollem.Response{
		{
			{Texts: []string{"Looking at the changes.\n"}},
			{FunctionCalls: []*gollem.FunctionCall{
				callOf("call-1", "get_file_changes_in_directory", map[string]any{"root_dir": "../my-agent"}),
			}},
		},
		{
			{Texts: []string{"## main.go\nLooks good."}},
		},
	}, &inputs)

	uc := usecase.NewAgent(client,
		toolSetMock{types.AgentReview: {tool}},
		usecase.WithOutput(&out),
	)
	transcript, err := uc.Run(ctx, &model.AgentTask{Kind: types.AgentReview, Prompt: "review ../my-agent", MaxSteps: 10})
	gt.NoError(t, err)

	gt.Equal(t, out.String(), "Looking at the changes.\n## main.go\nLooks good.")
	gt.A(t, tool.calls).Length(1)
	gt.Equal(t, tool.calls[0]["root_dir"], any("../my-agent"))

	gt.A(t, inputs).Length(2)
	gt.A(t, inputs[0]).Length(1)
	gt.Equal(t, inputs[0][0], gollem.Input(gollem.Text("review ../my-agent")))

	gt.A(t, inputs[1]).Length(1)
	resp, ok := inputs[1][0].(gollem.FunctionResponse)
	gt.True(t, ok)
	gt.Equal(t, resp.ID, "call-1")
	gt.Equal(t, resp.Name, "get_file_changes_in_directory")
	gt.NoError(t, resp.Error)

	gt.Equal(t, transcript.Steps, 2)
	gt.Equal(t, transcript.StopReason, model.StopCompleted)
	gt.A(t, transcript.ToolCalls).Length(1)
	gt.Equal(t, transcript.ToolCalls[0].Name, "get_file_changes_in_directory")
}

func TestAgent_Run_StepLimit(t *testing.T) {
	ctx := context.Background()

	newLoopingClient := func(generated *int) *mock.LLMClientMock {
		return &mock.LLMClientMock{
			NewSessionFunc: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
				return &mock.SessionMock{
					StreamFunc: func(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
						*generated++
						return streamOf(&gollem.Response{
							FunctionCalls: []*gollem.FunctionCall{
								callOf("loop", "generate_commit_message", map[string]any{"root_dir": "."}),
							},
						}), nil
					},
				}, nil
			},
		}
	}

	t.Run("explicit limit", func(t *testing.T) {
		var generated int
		tool := &toolMock{name: "generate_commit_message"}
		uc := usecase.NewAgent(newLoopingClient(&generated), toolSetMock{types.AgentCommit: {tool}})

		transcript, err := uc.Run(ctx, &model.AgentTask{Kind: types.AgentCommit, Prompt: "commit", MaxSteps: 3})
		gt.NoError(t, err)
		gt.Equal(t, generated, 3)
		gt.A(t, tool.calls).Length(2)
		gt.Equal(t, transcript.Steps, 3)
		gt.Equal(t, transcript.StopReason, model.StopStepLimit)
	})

	t.Run("default limit applies to every agent", func(t *testing.T) {
		for _, kind := range types.AgentKinds() {
			var generated int
			tool := &toolMock{name: "generate_commit_message"}
			uc := usecase.NewAgent(newLoopingClient(&generated), toolSetMock{kind: {tool}})

			transcript, err := uc.Run(ctx, &model.AgentTask{Kind: kind, Prompt: "loop"})
			gt.NoError(t, err)
			gt.Equal(t, generated, model.DefaultMaxSteps)
			gt.A(t, tool.calls).Length(model.DefaultMaxSteps - 1)
			gt.Equal(t, transcript.StopReason, model.StopStepLimit)
		}
	})
}

func TestAgent_Run_InvalidArgumentIsReturnedToModel(t *testing.T) {
	ctx := context.Background()
	var inputs [][]gollem.Input

	tool := &toolMock{
		name: "generate_markdown_file",
		run: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return nil, goerr.Wrap(types.ErrInvalidArgument, "content is required")
		},
	}

	client := scriptedClient([][]*gollem.Response{
		{{FunctionCalls: []*gollem.FunctionCall{callOf("c1", "generate_markdown_file", map[string]any{"file_path": "README.md"})}}},
		{{Texts: []string{"Could not write the file."}}},
	}, &inputs)

	uc := usecase.NewAgent(client, toolSetMock{types.AgentDocs: {tool}})
	transcript, err := uc.Run(ctx, &model.AgentTask{Kind: types.AgentDocs, Prompt: "document"})
	gt.NoError(t, err)

	gt.A(t, inputs).Length(2)
	resp, ok := inputs[1][0].(gollem.FunctionResponse)
	gt.True(t, ok)
	gt.Error(t, resp.Error)
	gt.True(t, errors.Is(resp.Error, types.ErrInvalidArgument))

	gt.A(t, transcript.ToolCalls).Length(1)
	gt.V(t, transcript.ToolCalls[0].Error).NotEqual("")
	gt.Equal(t, transcript.StopReason, model.StopCompleted)
}

func TestAgent_Run_UnknownToolIsReturnedToModel(t *testing.T) {
	ctx := context.Background()
	var inputs [][]gollem.Input

	tool := &toolMock{name: "generate_commit_message"}
	client := scriptedClient([][]*gollem.Response{
		{{FunctionCalls: []*gollem.FunctionCall{callOf("c1", "generate_markdown_file", nil)}}},
		{{Texts: []string{"done"}}},
	}, &inputs)

	uc := usecase.NewAgent(client, toolSetMock{types.AgentCommit: {tool}})
	_, err := uc.Run(ctx, &model.AgentTask{Kind: types.AgentCommit, Prompt: "commit"})
	gt.NoError(t, err)

	gt.A(t, tool.calls).Length(0)
	resp, ok := inputs[1][0].(gollem.FunctionResponse)
	gt.True(t, ok)
	gt.Error(t, resp.Error)
}

func TestAgent_Run_ToolFailureAborts(t *testing.T) {
	ctx := context.Background()
	errGit := errors.New("fatal: not a git repository")
	store := &transcriptStoreMock{}

	tool := &toolMock{
		name: "get_file_changes_in_directory",
		run: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return nil, errGit
		},
	}

	var generated int
	client := &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			return &mock.SessionMock{
				StreamFunc: func(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
					generated++
					return streamOf(&gollem.Response{
						FunctionCalls: []*gollem.FunctionCall{callOf("c1", "get_file_changes_in_directory", map[string]any{"root_dir": "/tmp"})},
					}), nil
				},
			}, nil
		},
	}

	uc := usecase.NewAgent(client, toolSetMock{types.AgentReview: {tool}}, usecase.WithTranscriptStore(store))
	transcript, err := uc.Run(ctx, &model.AgentTask{Kind: types.AgentReview, Prompt: "review"})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, errGit))
	gt.Equal(t, generated, 1)

	gt.Equal(t, transcript.StopReason, model.StopError)
	gt.True(t, strings.Contains(transcript.Error, "not a git repository"))
	gt.A(t, store.saved).Length(1)
	gt.Equal(t, store.saved[0].StopReason, model.StopError)
}

func TestAgent_Run_StreamErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("error chunk aborts", func(t *testing.T) {
		var out bytes.Buffer
		errModel := errors.New("quota exceeded")
		client := scriptedClient([][]*gollem.Response{
			{{Texts: []string{"partial"}}, {Error: errModel}},
		}, nil)

		uc := usecase.NewAgent(client, toolSetMock{types.AgentDocs: nil}, usecase.WithOutput(&out))
		transcript, err := uc.Run(ctx, &model.AgentTask{Kind: types.AgentDocs, Prompt: "docs"})
		gt.True(t, errors.Is(err, errModel))
		gt.Equal(t, out.String(), "partial")
		gt.Equal(t, transcript.Output, "partial")
	})

	t.Run("stream open error aborts", func(t *testing.T) {
		errModel := errors.New("connection refused")
		client := &mock.LLMClientMock{
			NewSessionFunc: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
				return &mock.SessionMock{
					StreamFunc: func(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
						return nil, errModel
					},
				}, nil
			},
		}

		uc := usecase.NewAgent(client, toolSetMock{types.AgentDocs: nil})
		_, err := uc.Run(ctx, &model.AgentTask{Kind: types.AgentDocs, Prompt: "docs"})
		gt.True(t, errors.Is(err, errModel))
	})

	t.Run("session error aborts", func(t *testing.T) {
		errSession := errors.New("bad credentials")
		client := &mock.LLMClientMock{
			NewSessionFunc: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
				return nil, errSession
			},
		}

		uc := usecase.NewAgent(client, toolSetMock{types.AgentDocs: nil})
		_, err := uc.Run(ctx, &model.AgentTask{Kind: types.AgentDocs, Prompt: "docs"})
		gt.True(t, errors.Is(err, errSession))
	})
}

func TestAgent_Run_InvalidTask(t *testing.T) {
	ctx := context.Background()
	client := &mock.LLMClientMock{}
	uc := usecase.NewAgent(client, toolSetMock{})

	_, err := uc.Run(ctx, &model.AgentTask{Kind: types.AgentDocs})
	gt.Error(t, err)

	_, err = uc.Run(ctx, &model.AgentTask{Kind: "deploy", Prompt: "x"})
	gt.Error(t, err)
}

func TestAgent_Run_SavesTranscript(t *testing.T) {
	ctx := context.Background()
	store := &transcriptStoreMock{}

	client := scriptedClient([][]*gollem.Response{{{Texts: []string{"hello"}}}}, nil)
	uc := usecase.NewAgent(client, toolSetMock{types.AgentReview: nil}, usecase.WithTranscriptStore(store))

	_, err := uc.Run(ctx, &model.AgentTask{Kind: types.AgentReview, Prompt: "review"})
	gt.NoError(t, err)
	gt.A(t, store.saved).Length(1)
	gt.Equal(t, store.saved[0].Output, "hello")
	gt.Equal(t, store.saved[0].Prompt, "review")
	gt.False(t, store.saved[0].FinishedAt.Before(store.saved[0].StartedAt))
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestAgent_Run_OutputFailureReleasesStream(t *testing.T) {
	ctx := context.Background()
	done := make(chan struct{})
	var streamCtx context.Context

	client := &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			return &mock.SessionMock{
				StreamFunc: func(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
					streamCtx = ctx
					ch := make(chan *gollem.Response)
					go func() {
						defer close(done)
						defer close(ch)
						for i := 0; i < 3; i++ {
							ch <- &gollem.Response{Texts: []string{"chunk"}}
						}
					}()
					return ch, nil
				},
			}, nil
		},
	}

	uc := usecase.NewAgent(client, toolSetMock{types.AgentDocs: nil}, usecase.WithOutput(failingWriter{}))
	transcript, err := uc.Run(ctx, &model.AgentTask{Kind: types.AgentDocs, Prompt: "docs"})
	gt.Error(t, err)
	gt.Equal(t, transcript.StopReason, model.StopError)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream producer is still blocked")
	}
	gt.Error(t, streamCtx.Err())
}

func TestDefaultSystemPrompt(t *testing.T) {
	gt.True(t, strings.Contains(usecase.DefaultSystemPrompt, "Conventional Commits"))
}
