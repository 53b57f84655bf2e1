package report

const htmlReport = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>AI分析报告 - {{.Filename}}</title>
<style>
body { font-family: -apple-system, 'PingFang SC', 'Microsoft YaHei', sans-serif; line-height: 1.6; color: #333; max-width: 1200px; margin: 0 auto; padding: 20px; background-color: #f5f5f5; }
.report { background: white; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); overflow: hidden; }
.header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; text-align: center; }
.header h1 { font-size: 28px; margin: 0 0 10px 0; }
.body { padding: 30px; }
.section { margin-bottom: 30px; border-bottom: 1px solid #eee; padding-bottom: 20px; }
.section h2 { font-size: 20px; color: #2c3e50; }
.status-success { color: #27ae60; font-weight: 600; }
.status-error { color: #e74c3c; font-weight: 600; }
.content { white-space: pre-wrap; background: #fafafa; border-radius: 6px; padding: 20px; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 8px 12px; text-align: left; }
th { background: #f0f0f5; }
</style>
</head>
<body>
<div class="report">
  <div class="header">
    <h1>AI分析报告</h1>
    <p>{{.Filename}}</p>
  </div>
  <div class="body">
    <div class="section">
      <h2>文件信息</h2>
      <table>
        <tr><th>文件名</th><td>{{.Filename}}</td></tr>
        <tr><th>文件类型</th><td>{{.FileType}}</td></tr>
        <tr><th>文件大小</th><td>{{.SizeLabel}}</td></tr>
        <tr><th>上传时间</th><td>{{.UploadTime}}</td></tr>
      </table>
    </div>
    <div class="section">
      <h2>分析状态</h2>
      {{if .Success}}<p class="status-success">✓ {{.StatusText}}</p>{{else}}<p class="status-error">✗ {{.StatusText}}: {{.ErrorMessage}}</p>{{end}}
    </div>
    {{if .Success}}
    <div class="section">
      <h2>分析结果</h2>
      <div class="content">{{.Content}}</div>
    </div>
    {{end}}
    <div class="section">
      <h2>技术信息</h2>
      <table>
        <tr><th>处理时间</th><td>{{.ProcessingTime}}</td></tr>
        <tr><th>使用模型</th><td>{{.ModelUsed}}</td></tr>
        <tr><th>Token数量</th><td>{{.TokensUsed}}</td></tr>
        <tr><th>分析提示词</th><td>{{.PromptUsed}}</td></tr>
        <tr><th>生成时间</th><td>{{.CreatedAt}}</td></tr>
      </table>
    </div>
  </div>
</div>
</body>
</html>
`
