package http

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"farkle-be/internal/state"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

var oauthClient = &nethttp.Client{
	Timeout: 10 * time.Second,
}

type tokenRequest struct {
	Code string `json:"code"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// ExchangeToken 代理 Discord OAuth 的授权码换取访问令牌
// 游戏核心不参与身份校验，拿到的用户名只当作不透明字符串
func ExchangeToken(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req tokenRequest

		if err := ctx.ReadJSON(&req); err != nil || req.Code == "" {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.WriteString("No code provided")
			return
		}

		form := url.Values{
			"client_id":     {appState.Cfg.DiscordClientID},
			"client_secret": {appState.Cfg.DiscordClientSecret},
			"code":          {req.Code},
			"grant_type":    {"authorization_code"},
		}

		resp, err := oauthClient.Post(
			appState.Cfg.DiscordTokenURL,
			"application/x-www-form-urlencoded",
			strings.NewReader(form.Encode()),
		)
		if err != nil {
			zap.L().Error("请求OAuth令牌失败", zap.Error(err))
			ctx.StatusCode(iris.StatusInternalServerError)
			ctx.WriteString("Internal Server Error")
			return
		}

		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			zap.L().Error("读取OAuth响应失败", zap.Error(err))
			ctx.StatusCode(iris.StatusInternalServerError)
			ctx.WriteString("Internal Server Error")
			return
		}

		// 上游失败时原样转发状态码和响应体
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			zap.L().Error(
				"OAuth令牌交换被拒绝",
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(body)),
			)

			ctx.StatusCode(resp.StatusCode)
			ctx.Write(body)
			return
		}

		var token tokenResponse

		if err := json.Unmarshal(body, &token); err != nil {
			zap.L().Error("解析OAuth响应失败", zap.Error(err))
			ctx.StatusCode(iris.StatusInternalServerError)
			ctx.WriteString("Internal Server Error")
			return
		}

		ctx.JSON(tokenResponse{AccessToken: token.AccessToken})
	}
}
